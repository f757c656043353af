// Package stats keeps the error profile of one end of a read: how the
// sequencer aligns to the reference, which substitutions it makes, the
// qualities it assigns and where along the read the errors happen.
//
// A profile is learned from aligned reads (Update) and used to generate
// new reads from a reference (GenerateRead).
package stats

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"readsim/cigar"
	"readsim/errmdl"
	"readsim/oligo"
	"readsim/source"
)

const (
	// Range of the quality values
	QualityRange = 128

	// quality value for missing qualities (as in BAM)
	NoQuality = 0xff
)

var ErrShortRead = errors.New("alignment longer than the read")
var ErrShortRef = errors.New("alignment longer than the reference")

type Profile struct {
	Alignment	*source.Source	// op -> op
	Mismatch	*source.Source	// reference nt -> read nt
	Quality		*source.Source	// op -> quality
	Distribution	*source.Source	// -> op, by position in the read
}

// Names of the sources as they appear in the model file
var Names = []string{"alignment", "mismatch", "quality", "distribution"}

func New() (p *Profile) {
	p = new(Profile)
	p.Alignment = source.New(cigar.Codes, cigar.Codes, 2, true)
	p.Mismatch = source.New(oligo.Alphabet, oligo.Alphabet, 1, false)
	p.Quality = source.New(cigar.Codes, QualityRange, 1, false)
	p.Distribution = source.New(1, cigar.Codes, 0, false)
	return
}

// Returns the source with the specified name, nil if there is none.
func (p *Profile) Source(name string) *source.Source {
	switch name {
	case "alignment":
		return p.Alignment
	case "mismatch":
		return p.Mismatch
	case "quality":
		return p.Quality
	case "distribution":
		return p.Distribution
	}

	return nil
}

// Learns from a read aligned to the reference. ops describes the alignment,
// ref starts at the first reference nt covered by the read. qual holds the
// raw qualities of the read and can be nil.
func (p *Profile) Update(ops, read, ref, qual []byte) (err error) {
	codes, err := cigar.Encode(ops)
	if err != nil {
		return
	}

	// check the lengths first so the statistics aren't left half updated
	rlen, reflen := cigar.Span(ops)
	if rlen > len(read) {
		return ErrShortRead
	} else if reflen > len(ref) {
		return ErrShortRef
	}

	if err = p.Alignment.LearnWord(codes); err != nil {
		return fmt.Errorf("alignment: %v", err)
	}

	i, j := 0, 0	// read and reference offsets
	for _, c := range codes {
		switch c {
		case cigar.CodeMatch:
			i++
			j++

		case cigar.CodeInsertion:
			i++

		case cigar.CodeDeletion:
			j++

		case cigar.CodeMismatch:
			in := oligo.Nt(ref[j])
			out := oligo.Nt(read[i])
			if err = p.Mismatch.Update([]byte{in}, i, out); err != nil {
				return fmt.Errorf("mismatch: %v", err)
			}
			i++
			j++
		}

		pos := i - 1
		if pos < 0 {
			pos = 0
		}

		if c != cigar.CodeDeletion && i <= len(qual) && qual[pos] != NoQuality {
			q := qual[pos]
			if q >= QualityRange {
				q = QualityRange - 1
			}

			if err = p.Quality.Update([]byte{c}, pos, q); err != nil {
				return fmt.Errorf("quality: %v", err)
			}
		}

		if err = p.Distribution.Update(nil, pos, c); err != nil {
			return fmt.Errorf("distribution: %v", err)
		}
	}

	return
}

// Maximum length of the alignments the profile generates
func (p *Profile) ReadLen() int {
	n := p.Alignment.Len() - 1
	if n < 0 {
		n = 0
	}

	return n
}

// Generates a read from the reference window. The qualities are raw
// (add 33 for Phred+33).
func (p *Profile) GenerateRead(rnd *rand.Rand, window []byte) (r *errmdl.Read) {
	r = new(errmdl.Read)

	codes := p.Alignment.GenerateWord(rnd, nil)
	if n := len(codes); n > 0 && codes[n-1] == p.Alignment.End() {
		codes = codes[:n-1]
	}

	j := 0
	for _, c := range codes {
		// the nt at j is needed by every op but insertions
		if c != cigar.CodeInsertion && j >= len(window) {
			r.Cut = true
			break
		}

		i := len(r.Seq)
		if c != cigar.CodeDeletion {
			r.Qual = append(r.Qual, p.Quality.Generate(rnd, []byte{c}, i))
		}

		switch c {
		case cigar.CodeMatch:
			r.Seq = append(r.Seq, window[j])
			j++

		case cigar.CodeInsertion:
			r.Seq = append(r.Seq, oligo.Char(byte(rnd.Intn(4))))

		case cigar.CodeDeletion:
			j++

		case cigar.CodeMismatch:
			in := oligo.Nt(window[j])
			out := p.Mismatch.Generate(rnd, []byte{in}, i)
			r.Seq = append(r.Seq, oligo.Char(out))
			j++
		}

		r.Ops = append(r.Ops, cigar.Op(c))
	}

	return
}

// Writes the four sources
func (p *Profile) Dump(w io.Writer) (err error) {
	for _, name := range Names {
		if err = p.Source(name).Dump(w, name); err != nil {
			return
		}
	}

	return
}
