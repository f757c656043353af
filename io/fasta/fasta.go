package fasta

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"strings"
)

// Line width of the written sequences
const LineWidth = 60

type Record struct {
	Label	string	// first word of the header
	Desc	string	// rest of the header
	Seq	[]byte
}

// Reads all the sequences of the file
func Read(fname string) ([]Record, error) {
	var recs []Record

	err := Parse(fname, func(label, desc string, seq []byte) error {
		recs = append(recs, Record{label, desc, seq})
		return nil
	})

	return recs, err
}

// Calls process for each sequence of the (possibly gzipped) file. The
// sequence is not reused after process returns.
func Parse(fname string, process func(label, desc string, seq []byte) error) error {
	var r io.Reader

	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	if cf, err := gzip.NewReader(f); err == nil {
		r = cf
	} else {
		f.Seek(0, 0)
		r = f
	}

	return ParseReader(r, process)
}

func ParseReader(r io.Reader, process func(label, desc string, seq []byte) error) error {
	var label, desc string
	var seq []byte
	hdr := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 256*1024*1024)
	for sc.Scan() {
		l := bytes.TrimSpace(sc.Bytes())
		if len(l) == 0 || l[0] == ';' {
			continue
		}

		if l[0] == '>' {
			if hdr {
				if err := process(label, desc, seq); err != nil {
					return err
				}
			}

			ls := strings.SplitN(string(l[1:]), " ", 2)
			label = ls[0]
			desc = ""
			if len(ls) > 1 {
				desc = strings.TrimSpace(ls[1])
			}

			seq = nil
			hdr = true
			continue
		}

		if !hdr {
			return errors.New("sequence before the first header")
		}

		seq = append(seq, l...)
	}

	if err := sc.Err(); err != nil {
		return err
	}

	if hdr {
		return process(label, desc, seq)
	}

	return nil
}

type Writer struct {
	w	*bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bufio.NewWriter(w)}
}

// Writes a sequence, LineWidth nts per line. If width is 0 the sequence is
// written on a single line.
func (w *Writer) Write(label string, seq []byte, width int) (err error) {
	w.w.WriteByte('>')
	w.w.WriteString(label)
	w.w.WriteByte('\n')
	if width <= 0 {
		width = len(seq)
	}

	for i := 0; i < len(seq); i += width {
		e := i + width
		if e > len(seq) {
			e = len(seq)
		}

		w.w.Write(seq[i:e])
		if err = w.w.WriteByte('\n'); err != nil {
			return
		}
	}

	return
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}
