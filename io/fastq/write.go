// Package fastq writes reads in the FASTQ format.
package fastq

import (
	"bufio"
	"io"
)

type Writer struct {
	w	*bufio.Writer
	buf	[]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Writes a record. The qualities are raw, they are converted to Phred+33.
// Missing qualities are written as '!'.
func (w *Writer) Write(id, comment string, seq, qual []byte) error {
	b := w.buf[:0]
	b = append(b, '@')
	b = append(b, id...)
	if comment != "" {
		b = append(b, ' ')
		b = append(b, comment...)
	}

	b = append(b, '\n')
	b = append(b, seq...)
	b = append(b, "\n+\n"...)
	for i := range seq {
		q := byte(0)
		if i < len(qual) {
			q = qual[i]
		}

		if q > 93 {
			q = 93
		}
		b = append(b, q + 33)
	}
	b = append(b, '\n')
	w.buf = b

	_, err := w.w.Write(b)
	return err
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}
