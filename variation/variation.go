// Package variation reads the variations to apply to a reference: known
// variants from VCF files, with the allele frequencies found in them, and
// user defined variations (UDV) that assign an allele to each copy of a
// chromosome.
package variation

import (
	"errors"
	"math/rand"
	"sort"
)

var ErrFields = errors.New("not enough fields")
var ErrPos = errors.New("invalid position")

type Variation struct {
	Region	string
	Pos	int		// 0-based position in the reference
	Ref	[]byte		// reference allele
	Alts	[][]byte	// possible alleles
	Freq	[]float64	// frequency of each allele, nil for user defined variations
}

// True for user defined variations: allele i goes to the i-th copy of the
// chromosome.
func (v *Variation) User() bool {
	return v.Freq == nil
}

// Reference position right after the variation
func (v *Variation) End() int {
	return v.Pos + len(v.Ref)
}

// True if the two variations touch or overlap
func (v *Variation) Overlaps(o *Variation) bool {
	return v.Region == o.Region && v.End() >= o.Pos && v.Pos <= o.End()
}

// Returns the allele for the n-th copy of the chromosome
func (v *Variation) Allele(rnd *rand.Rand, n int) []byte {
	if v.User() {
		if n >= len(v.Alts) {
			return v.Ref
		}

		return v.Alts[n]
	}

	return v.Alts[Pick(rnd, v.Freq)]
}

// Picks an index with the probabilities in p. If rounding leaves the draw
// outside of all intervals, the last non-zero entry is picked.
func Pick(rnd *rand.Rand, p []float64) int {
	outcome := rnd.Float64()
	threshold := 0.0
	last := 0
	for i, v := range p {
		if v <= 0 {
			continue
		}

		if threshold <= outcome && outcome < threshold + v {
			return i
		}

		threshold += v
		last = i
	}

	return last
}

// Variations grouped by region, sorted by position
type Set struct {
	regions	map[string][]*Variation
	names	[]string
}

func NewSet(vars []*Variation) *Set {
	s := &Set{regions: make(map[string][]*Variation)}
	s.Add(vars...)
	return s
}

func (s *Set) Add(vars ...*Variation) {
	for _, v := range vars {
		if _, ok := s.regions[v.Region]; !ok {
			s.names = append(s.names, v.Region)
		}

		s.regions[v.Region] = append(s.regions[v.Region], v)
	}

	for _, vs := range s.regions {
		sort.SliceStable(vs, func(i, j int) bool { return vs[i].Pos < vs[j].Pos })
	}
}

// Variations in the region, nil if there are none
func (s *Set) Region(name string) []*Variation {
	return s.regions[name]
}

// Names of the regions, in the order they first appeared
func (s *Set) Regions() []string {
	return s.names
}

func (s *Set) Len() (n int) {
	for _, vs := range s.regions {
		n += len(vs)
	}

	return
}
