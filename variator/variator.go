// Package variator builds the alleles of a genome: for each chromosome of
// the reference it applies known and user defined variations, and
// optionally changes the size of the tandem repeats as learned in a model.
package variator

import (
	"fmt"
	"math/rand"
	"sort"
	"readsim/allele"
	"readsim/model"
	"readsim/tandem"
	"readsim/variation"

	log "github.com/sirupsen/logrus"
)

type Stats struct {
	Applied		uint64	// variations applied, per allele
	UserCollisions	uint64	// known variations dropped because they overlap a user defined one
	Collisions	uint64	// variations on a position already changed by a previous one, per allele
	Incoherent	uint64	// variations that don't match the reference, per allele
	Amplified	uint64	// tandem repeats that changed size, per allele
}

func (s Stats) String() string {
	sum := s.Applied + s.UserCollisions + s.Collisions + s.Incoherent
	if sum == 0 {
		sum = 1
	}

	pct := func(n uint64) float64 { return float64(n) * 100 / float64(sum) }
	return fmt.Sprintf("applied %d (%.2f%%) udv collisions %d (%.2f%%) collisions %d (%.2f%%) incoherent %d (%.2f%%) amplified %d",
		s.Applied, pct(s.Applied), s.UserCollisions, pct(s.UserCollisions), s.Collisions, pct(s.Collisions),
		s.Incoherent, pct(s.Incoherent), s.Amplified)
}

// A variation applied to an allele
type Placement struct {
	Pos		int	// reference position
	AllelePos	int	// position in the allele sequence
	Ref		[]byte
	Alt		[]byte
}

type Variator struct {
	Stats

	ploidy	int
	rnd	*rand.Rand
	mdl	*model.Model
	alleles	[]*allele.Allele
	placed	[][]Placement	// applied variations, per allele
	log	log.FieldLogger
}

func New(ploidy int, rnd *rand.Rand) *Variator {
	v := &Variator{ploidy: ploidy, rnd: rnd, log: log.StandardLogger()}
	v.placed = make([][]Placement, ploidy)
	for i := 0; i < ploidy; i++ {
		v.alleles = append(v.alleles, allele.New(nil))
	}

	return v
}

func (v *Variator) Ploidy() int {
	return v.ploidy
}

// Enables the amplification of tandem repeats with the statistics of the
// model.
func (v *Variator) SetModel(m *model.Model) {
	v.mdl = m
}

func (v *Variator) SetLogger(l log.FieldLogger) {
	v.log = l
}

// Merges user defined and known variations of a region, sorted by
// position. Known variations that overlap a user defined one are dropped.
func (v *Variator) Merge(udv, vcf []*variation.Variation) (ret []*variation.Variation) {
	udv = sorted(udv)
	vcf = sorted(vcf)

	k := 0
	for _, kv := range vcf {
		for k < len(udv) && udv[k].End() < kv.Pos {
			k++
		}

		if k < len(udv) && kv.Overlaps(udv[k]) {
			v.UserCollisions++
			continue
		}

		ret = append(ret, kv)
	}

	ret = append(ret, udv...)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Pos < ret[j].Pos })
	return
}

func sorted(vs []*variation.Variation) []*variation.Variation {
	if sort.SliceIsSorted(vs, func(i, j int) bool { return vs[i].Pos < vs[j].Pos }) {
		return vs
	}

	c := append([]*variation.Variation(nil), vs...)
	sort.SliceStable(c, func(i, j int) bool { return c[i].Pos < c[j].Pos })
	return c
}

// Variations that change the size of the tandem repeats that don't
// overlap any of the other variations.
func (v *Variator) amplifications(label string, reference []byte, reps []tandem.Repeat, vars []*variation.Variation) (ret []*variation.Variation) {
	k := 0
	for _, r := range reps {
		tv := &variation.Variation{Region: label, Pos: r.Pos, Ref: reference[r.Pos:r.Pos + r.Len()]}
		for k < len(vars) && vars[k].End() < tv.Pos {
			k++
		}

		if k < len(vars) && tv.Overlaps(vars[k]) {
			continue
		}

		n := v.mdl.Amplify(v.rnd, r.Motif, r.Rep)
		if n == r.Rep {
			continue
		}

		motif := tv.Ref[:r.Motif]
		alt := make([]byte, 0, n * r.Motif)
		for i := 0; i < n; i++ {
			alt = append(alt, motif...)
		}

		tv.Alts = [][]byte{alt}
		tv.Freq = []float64{1}
		ret = append(ret, tv)
	}

	return
}

// Builds the alleles of a region. The returned alleles are reused by the
// next call.
func (v *Variator) Vary(label string, reference []byte, vars []*variation.Variation) ([]*allele.Allele, error) {
	vars = sorted(vars)

	var reps []tandem.Repeat
	if v.mdl != nil {
		reps = tandem.Analyze(reference, v.mdl.MaxMotif)
	}

	for i, a := range v.alleles {
		a.Reset(reference)
		v.placed[i] = v.placed[i][:0]

		vs := vars
		if v.mdl != nil {
			amps := v.amplifications(label, reference, reps, vars)
			v.Amplified += uint64(len(amps))
			if len(amps) > 0 {
				vs = append(append([]*variation.Variation(nil), vars...), amps...)
				sort.SliceStable(vs, func(i, j int) bool { return vs[i].Pos < vs[j].Pos })
			}
		}

		for _, vr := range vs {
			alt := vr.Allele(v.rnd, i)
			err := a.ApplyAt(vr.Pos, vr.Ref, alt)
			switch err {
			case nil:
				v.Applied++
				v.placed[i] = append(v.placed[i], Placement{Pos: vr.Pos, Ref: vr.Ref, Alt: alt})

			case allele.ErrCollision:
				v.Collisions++

			case allele.ErrIncoherent:
				v.Incoherent++
				v.log.WithFields(log.Fields{"region": label, "pos": vr.Pos + 1, "ref": string(vr.Ref)}).Debug("incoherent variation")

			default:
				return nil, err
			}
		}

		if err := a.Finish(); err != nil {
			return nil, err
		}
	}

	return v.alleles, nil
}

// Returns the variations applied to allele i by the last call to Vary,
// sorted by position, with their positions in the allele sequence.
func (v *Variator) Placements(i int) (ret []Placement, err error) {
	a := v.alleles[i]
	defer a.SeekEnd()

	ret = make([]Placement, 0, len(v.placed[i]))
	for _, p := range v.placed[i] {
		if p.AllelePos, err = a.Seek(p.Pos); err != nil {
			return nil, err
		}

		ret = append(ret, p)
	}

	return
}
