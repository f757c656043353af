// Package align implements a Needleman-Wunsch aligner of a read against a
// window of the reference.
//
// The result is a string of edit operations (see package cigar) and the
// offset in the window where the alignment starts. The alignment always
// covers the whole read; the reference past the best cell in the last row
// is ignored.
package align

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"readsim/cigar"
)

type Mode int

const (
	// First row is j*Gap: the read has to start at the beginning of the
	// reference or pay for the skipped nts.
	Global Mode = iota

	// First row is 0: any prefix of the reference can be skipped for free.
	SemiGlobal
)

type Scores struct {
	Match		int
	Mismatch	int
	Gap		int
}

var DefaultScores = Scores{Match: 1, Mismatch: 0, Gap: -1}

var ErrScores = errors.New("scores must satisfy gap < mismatch < match")

type Aligner struct {
	mode	Mode
	sc	Scores

	ref	[]byte
	read	[]byte
	rows	int		// len(read) + 1
	cols	int		// len(ref) + 1
	nw	[]int		// score matrix, rows x cols
	op	[]byte		// operation that produced each cell

	ops	[]byte
	start	int
	score	int
}

func New(mode Mode) *Aligner {
	return &Aligner{mode: mode, sc: DefaultScores}
}

func (al *Aligner) SetScores(sc Scores) error {
	if sc.Gap >= sc.Mismatch || sc.Mismatch >= sc.Match {
		return ErrScores
	}

	al.sc = sc
	return nil
}

func (al *Aligner) Mode() Mode {
	return al.mode
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}

	return c
}

// Aligns the read to the reference. Returns the edit operations and the
// number of reference nts before the alignment. The returned slice is
// reused by the next call.
func (al *Aligner) Align(ref, read []byte) (ops []byte, start int) {
	al.ref = ref
	al.read = read
	al.rows = len(read) + 1
	al.cols = len(ref) + 1

	sz := al.rows * al.cols
	if cap(al.nw) < sz {
		al.nw = make([]int, sz)
		al.op = make([]byte, sz)
	}
	al.nw = al.nw[:sz]
	al.op = al.op[:sz]

	al.fill()
	al.backtrace()
	return al.ops, al.start
}

func (al *Aligner) fill() {
	nw, op, cols := al.nw, al.op, al.cols
	sc := &al.sc

	for j := 0; j < cols; j++ {
		if al.mode == Global {
			nw[j] = j * sc.Gap
		} else {
			nw[j] = 0
		}
		op[j] = cigar.Deletion
	}

	for i := 1; i < al.rows; i++ {
		k := i * cols
		nw[k] = i * sc.Gap
		op[k] = cigar.Insertion

		c := upper(al.read[i-1])
		for j := 1; j < cols; j++ {
			k++

			s, o := nw[k - cols - 1] + sc.Mismatch, byte(cigar.Mismatch)
			if upper(al.ref[j-1]) == c {
				s, o = nw[k - cols - 1] + sc.Match, cigar.Match
			}

			// on equal scores diagonal wins over up, up over left
			if up := nw[k - cols] + sc.Gap; up > s {
				s, o = up, cigar.Insertion
			}

			if left := nw[k - 1] + sc.Gap; left > s {
				s, o = left, cigar.Deletion
			}

			nw[k] = s
			op[k] = o
		}
	}
}

func (al *Aligner) backtrace() {
	last := (al.rows - 1) * al.cols

	// best cell in the last row, the leftmost one on ties
	best := 0
	for j := 1; j < al.cols; j++ {
		if al.nw[last + j] > al.nw[last + best] {
			best = j
		}
	}
	al.score = al.nw[last + best]

	ops := al.ops[:0]
	i, j := al.rows - 1, best
	for i > 0 && j > 0 {
		o := al.op[i*al.cols + j]
		ops = append(ops, o)
		switch o {
		case cigar.Insertion:
			i--

		case cigar.Deletion:
			j--

		default:
			i--
			j--
		}
	}

	for ; i > 0; i-- {
		ops = append(ops, cigar.Insertion)
	}

	for l, r := 0, len(ops) - 1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}

	al.ops = ops
	al.start = j
}

// Score of the last alignment
func (al *Aligner) Score() int {
	return al.score
}

// Offset of the last alignment in the reference
func (al *Aligner) Start() int {
	return al.start
}

// Edit operations of the last alignment
func (al *Aligner) Ops() []byte {
	return al.ops
}

// Score of aligning the first i read nts to the first j reference nts
func (al *Aligner) At(i, j int) int {
	return al.nw[i*al.cols + j]
}

// Operation that produced the cell (i, j)
func (al *Aligner) Op(i, j int) byte {
	return al.op[i*al.cols + j]
}

// Returns the reference and the read of the last alignment laid out one
// above the other. Gaps are '-', the read is indented by the start offset.
func (al *Aligner) Render() (ref, read []byte) {
	n := al.start + len(al.ops)
	ref = make([]byte, 0, n)
	read = make([]byte, 0, n)

	ref = append(ref, al.ref[:al.start]...)
	for k := 0; k < al.start; k++ {
		read = append(read, ' ')
	}

	i, j := 0, al.start
	for _, o := range al.ops {
		switch o {
		case cigar.Insertion:
			ref = append(ref, '-')
			read = append(read, al.read[i])
			i++

		case cigar.Deletion:
			ref = append(ref, al.ref[j])
			read = append(read, '-')
			j++

		default:
			ref = append(ref, al.ref[j])
			read = append(read, al.read[i])
			i++
			j++
		}
	}

	return
}

// Writes the score and the operation matrices
func (al *Aligner) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < al.rows; i++ {
		for j := 0; j < al.cols; j++ {
			fmt.Fprintf(bw, "%d\t", al.At(i, j))
		}
		bw.WriteByte('\n')
	}

	for i := 0; i < al.rows; i++ {
		for j := 0; j < al.cols; j++ {
			fmt.Fprintf(bw, "%c\t", al.Op(i, j))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}
