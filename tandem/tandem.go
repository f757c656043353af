// Package tandem finds tandem repeats (a motif repeated back to back) in a
// reference sequence.
package tandem

import (
	"bytes"
	"sort"
)

type Repeat struct {
	Pos	int	// position of the first nt in the reference
	Motif	int	// length of the motif
	Rep	int	// number of repetitions, at least 2
}

// Length of the repeat in nts
func (r Repeat) Len() int {
	return r.Motif * r.Rep
}

// Scans the reference from left to right and returns the non-overlapping
// tandem repeats with motifs of up to maxMotif nts. At each position the
// widest repeat wins, on equal width the shorter motif wins. Runs of 'N'
// are skipped. The comparison is case insensitive.
func Analyze(ref []byte, maxMotif int) (ret []Repeat) {
	if maxMotif < 1 {
		return nil
	}

	w := make([]int, maxMotif + 1)
	for pos := 0; pos < len(ref); {
		if ref[pos] == 'N' || ref[pos] == 'n' {
			pos++
			continue
		}

		best := 1
		for i := 1; i <= maxMotif; i++ {
			w[i] = 1
			for pos + (w[i] + 1) * i <= len(ref) {
				if !bytes.EqualFold(ref[pos:pos+i], ref[pos + w[i]*i:pos + (w[i]+1)*i]) {
					break
				}

				w[i]++
			}

			if w[i] > 1 && i * w[i] > best * w[best] {
				best = i
			}
		}

		if w[best] > 1 {
			ret = append(ret, Repeat{pos, best, w[best]})
		}

		pos += best * w[best]
	}

	return
}

// Returns the repeats that start at or after from and end before to. The
// repeats must be sorted by position, as returned by Analyze.
func Within(reps []Repeat, from, to int) (ret []Repeat) {
	i := sort.Search(len(reps), func(i int) bool { return reps[i].Pos >= from })
	for ; i < len(reps) && reps[i].Pos < to; i++ {
		if reps[i].Pos + reps[i].Len() <= to {
			ret = append(ret, reps[i])
		}
	}

	return
}
