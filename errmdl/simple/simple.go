// Package simple implements a position independent error model with fixed
// insertion, deletion and substitution rates. It doesn't need to be
// learned, which makes it useful for testing and for simulating when no
// error profile is available.
package simple

import (
	"math/rand"
	"readsim/cigar"
	"readsim/errmdl"
	"readsim/oligo"
)

type SimpleErrorModel struct {
	// Single read error parameters
	erri	float64		// probability of insertion error
	errdi	float64		// probability of insertion or deletion error (only deletion error is errdi - erri)
	err	float64		// total probability of error per position (only substitution error is err - errdi - erri)

	rlen	int		// read length
	qual	byte		// quality assigned to every base
}

func New(ierr, derr, serr float64, rlen int, qual byte) (em *SimpleErrorModel) {
	em = new(SimpleErrorModel)

	em.erri = ierr
	em.errdi = ierr + derr
	em.err = ierr + derr + serr
	em.rlen = rlen
	em.qual = qual
	return
}

func (em *SimpleErrorModel) ReadLen() int {
	return em.rlen
}

func (em *SimpleErrorModel) GenerateRead(rnd *rand.Rand, window []byte) (r *errmdl.Read) {
	r = new(errmdl.Read)
	for i := 0; len(r.Seq) < em.rlen; {
		p := rnd.Float64()
		if p < em.erri {
			// insertion
			r.Seq = append(r.Seq, oligo.Char(byte(rnd.Intn(4))))
			r.Qual = append(r.Qual, em.qual)
			r.Ops = append(r.Ops, cigar.Insertion)
			continue
		}

		if i >= len(window) {
			r.Cut = true
			break
		}

		if p < em.errdi {
			// deletion
			r.Ops = append(r.Ops, cigar.Deletion)
		} else if p < em.err {
			// substitution
			n := byte(rnd.Intn(3))
			if n >= oligo.Nt(window[i]) {
				n++
			}

			r.Seq = append(r.Seq, oligo.Char(n))
			r.Qual = append(r.Qual, em.qual)
			r.Ops = append(r.Ops, cigar.Mismatch)
		} else {
			r.Seq = append(r.Seq, window[i])
			r.Qual = append(r.Qual, em.qual)
			r.Ops = append(r.Ops, cigar.Match)
		}

		i++
	}

	return
}
