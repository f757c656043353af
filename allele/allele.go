// Package allele builds the sequence of an allele by applying variations
// to a reference, keeping track of how the allele aligns to it.
//
// The allele is written left to right: unchanged stretches of reference
// are copied and variations are applied at increasing reference positions.
// Once written, Seek maps reference positions to allele positions.
package allele

import (
	"bytes"
	"errors"
	"readsim/cigar"
)

var ErrIncoherent = errors.New("reference allele doesn't match the reference")
var ErrCollision = errors.New("variation overlaps a previous one")
var ErrRange = errors.New("position past the written allele")
var ErrCursor = errors.New("allele cursor not at the end")

type Allele struct {
	reference	[]byte

	seq	[]byte	// allele sequence
	ops	[]byte	// edit operations from the reference to the allele

	ref	int	// reference cursor
	pos	int	// allele cursor
	alg	int	// operations cursor
	off	int	// deletions minus insertions up to alg
}

// Creates an empty allele of the reference.
func New(reference []byte) *Allele {
	a := new(Allele)
	a.Reset(reference)
	return a
}

// Empties the allele and starts over with a new reference. Reuses the
// allocated buffers if they are big enough.
func (a *Allele) Reset(reference []byte) {
	sz := len(reference) * 3 / 2
	if cap(a.seq) < sz {
		a.seq = make([]byte, 0, sz)
		a.ops = make([]byte, 0, sz)
	}

	a.reference = reference
	a.seq = a.seq[:0]
	a.ops = a.ops[:0]
	a.ref, a.pos, a.alg, a.off = 0, 0, 0, 0
}

func (a *Allele) atEnd() bool {
	return a.alg == len(a.ops)
}

// Copies the unchanged reference up to (not including) position to.
func (a *Allele) Copy(to int) error {
	if !a.atEnd() {
		return ErrCursor
	}

	if to > len(a.reference) {
		to = len(a.reference)
	}

	if to < a.ref {
		return ErrCollision
	}

	n := to - a.ref
	a.seq = append(a.seq, a.reference[a.ref:to]...)
	for i := 0; i < n; i++ {
		a.ops = append(a.ops, cigar.Match)
	}

	a.ref += n
	a.pos += n
	a.alg += n
	return nil
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}

	return c
}

// Replaces refAllele, which must be the reference at the cursor, with
// altAllele.
func (a *Allele) ApplyVariation(refAllele, altAllele []byte) error {
	if !a.atEnd() {
		return ErrCursor
	}

	end := a.ref + len(refAllele)
	if end > len(a.reference) || !bytes.EqualFold(a.reference[a.ref:end], refAllele) {
		return ErrIncoherent
	}

	n := len(refAllele)
	if len(altAllele) < n {
		n = len(altAllele)
	}

	for i := 0; i < n; i++ {
		op := byte(cigar.Match)
		if upper(refAllele[i]) != upper(altAllele[i]) {
			op = cigar.Mismatch
		}

		a.seq = append(a.seq, altAllele[i])
		a.ops = append(a.ops, op)
	}

	a.seq = append(a.seq, altAllele[n:]...)
	for i := n; i < len(altAllele); i++ {
		a.ops = append(a.ops, cigar.Insertion)
	}

	for i := n; i < len(refAllele); i++ {
		a.ops = append(a.ops, cigar.Deletion)
	}

	a.ref = end
	a.pos += len(altAllele)
	a.alg = len(a.ops)
	a.off += len(refAllele) - len(altAllele)
	return nil
}

// Copies the reference up to refPos and applies the variation there.
// Returns ErrCollision if refPos was already consumed by a previous
// variation.
func (a *Allele) ApplyAt(refPos int, refAllele, altAllele []byte) error {
	if refPos < a.ref {
		return ErrCollision
	}

	if refPos > len(a.reference) {
		return ErrIncoherent
	}

	if err := a.Copy(refPos); err != nil {
		return err
	}

	return a.ApplyVariation(refAllele, altAllele)
}

// Copies the rest of the reference
func (a *Allele) Finish() error {
	return a.Copy(len(a.reference))
}

// Moves the cursors over the operation at alg
func (a *Allele) next() {
	switch a.ops[a.alg] {
	case cigar.Insertion:
		a.pos++
		a.off--
	case cigar.Deletion:
		a.ref++
		a.off++
	default:
		a.ref++
		a.pos++
	}

	a.alg++
}

// Moves the cursors back over the operation before alg
func (a *Allele) prev() {
	a.alg--
	switch a.ops[a.alg] {
	case cigar.Insertion:
		a.pos--
		a.off++
	case cigar.Deletion:
		a.ref--
		a.off--
	default:
		a.ref--
		a.pos--
	}
}

// Moves the cursors to the reference position target and returns the
// corresponding allele position. The cursors stop right after the
// operation that consumed reference position target-1: insertions that
// follow it are not included.
func (a *Allele) Seek(target int) (int, error) {
	end := a.ref
	for k := a.alg; k < len(a.ops); k++ {
		if cigar.ConsumesRef(a.ops[k]) {
			end++
		}
	}

	if target < 0 || target > end {
		return a.pos, ErrRange
	}

	if target > a.ref {
		for a.ref < target {
			a.next()
		}
	} else if target < a.ref {
		for a.ref > target {
			a.prev()
		}

		for a.alg > 0 && a.ops[a.alg-1] == cigar.Insertion {
			a.prev()
		}
	}

	return a.pos, nil
}

// Moves the cursors to the end of the written allele
func (a *Allele) SeekEnd() {
	for a.alg < len(a.ops) {
		a.next()
	}
}

// Allele sequence written so far
func (a *Allele) Sequence() []byte {
	return a.seq
}

// Edit operations from the reference to the allele written so far
func (a *Allele) Alignment() []byte {
	return a.ops
}

func (a *Allele) Reference() []byte {
	return a.reference
}

func (a *Allele) Ref() int {
	return a.ref
}

func (a *Allele) Pos() int {
	return a.pos
}

func (a *Allele) Alg() int {
	return a.alg
}

// Deleted minus inserted nts up to the operations cursor
func (a *Allele) Off() int {
	return a.off
}
