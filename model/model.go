// Package model keeps all the statistics learned from a sequencing run:
// the error profiles of the two ends of a read, the insert size and
// orientation of the pairs, and the amplification of tandem repeats.
package model

import (
	"errors"
	"fmt"
	"math/rand"
	"readsim/source"
	"readsim/stats"
)

// Relative orientation of the two ends of a pair
const (
	FR = iota
	RF
	FF
	RR

	Orientations
)

// Largest alphabet a source output can take
const maxSymbols = 256

var ErrParams = errors.New("invalid model parameters")

var orientationNames = [Orientations]string{"FR", "RF", "FF", "RR"}

type Model struct {
	MaxInsertSize	int
	MaxRepetition	int
	MaxMotif	int
	SizeGranularity	int

	Single		*stats.Profile	// first (or only) end of a read
	Pair		*stats.Profile	// second end of a paired read
	Amplification	*source.Source	// reference repetitions -> observed repetitions, by motif size
	InsertSize	*source.Source	// -> insert size bucket
	Orientation	*source.Source	// -> orientation of the pair
}

// Creates an empty model. Insert sizes up to maxInsertSize are split in
// sizeGranularity buckets, tandem repeats are tracked for motifs up to
// maxMotif nts and up to maxRepetition-1 repetitions.
func New(maxInsertSize, maxRepetition, maxMotif, sizeGranularity int) (m *Model, err error) {
	if maxInsertSize < 1 || maxMotif < 1 || maxRepetition < 2 || maxRepetition > maxSymbols ||
		sizeGranularity < 1 || sizeGranularity > maxSymbols || sizeGranularity > maxInsertSize {
		return nil, fmt.Errorf("%w: insert size %d repetition %d motif %d granularity %d", ErrParams,
			maxInsertSize, maxRepetition, maxMotif, sizeGranularity)
	}

	m = new(Model)
	m.MaxInsertSize = maxInsertSize
	m.MaxRepetition = maxRepetition
	m.MaxMotif = maxMotif
	m.SizeGranularity = sizeGranularity
	m.Single = stats.New()
	m.Pair = stats.New()
	m.Amplification = source.New(maxRepetition, maxRepetition, 1, false)
	m.InsertSize = source.New(1, sizeGranularity, 0, false)
	m.Orientation = source.New(1, Orientations, 0, false)
	return
}

// Returns the profile of the specified end (0 or 1) of a read
func (m *Model) Profile(end int) *stats.Profile {
	if end == 0 {
		return m.Single
	}

	return m.Pair
}

// Returns the bucket of an insert size
func (m *Model) Bucket(size int) int {
	if size < 0 {
		size = -size
	}

	b := size * m.SizeGranularity / m.MaxInsertSize
	if b >= m.SizeGranularity {
		b = m.SizeGranularity - 1
	}

	return b
}

// Returns the width (in nts) of an insert size bucket
func (m *Model) BucketWidth() int {
	w := m.MaxInsertSize / m.SizeGranularity
	if w < 1 {
		w = 1
	}

	return w
}

func (m *Model) UpdateInsertSize(size int) error {
	return m.InsertSize.Update(nil, 0, byte(m.Bucket(size)))
}

// True if there are insert size statistics
func (m *Model) HasInsertSize() bool {
	return m.InsertSize.Len() > 0
}

// Draws an insert size: picks a bucket and a uniformly distributed size
// within it.
func (m *Model) SampleInsertSize(rnd *rand.Rand) int {
	b := int(m.InsertSize.Generate(rnd, nil, 0))
	return b * m.MaxInsertSize / m.SizeGranularity + rnd.Intn(m.BucketWidth())
}

func (m *Model) UpdateOrientation(o int) error {
	if o < 0 || o >= Orientations {
		return source.ErrSymbol
	}

	return m.Orientation.Update(nil, 0, byte(o))
}

// Draws an orientation, FR if nothing was learned
func (m *Model) SampleOrientation(rnd *rand.Rand) int {
	return int(m.Orientation.Generate(rnd, nil, 0))
}

func (m *Model) clampRep(rep int) byte {
	if rep >= m.MaxRepetition {
		rep = m.MaxRepetition - 1
	}

	return byte(rep)
}

// Counts a tandem repeat with refRep repetitions of a motif of the
// specified size in the reference observed with rep repetitions in a read.
func (m *Model) UpdateAmplification(motif, refRep, rep int) error {
	if motif < 1 || motif > m.MaxMotif || refRep < 0 || rep < 1 {
		return source.ErrSymbol
	}

	return m.Amplification.Update([]byte{m.clampRep(refRep)}, motif - 1, m.clampRep(rep))
}

// Draws the number of repetitions of a tandem repeat with refRep
// repetitions in the reference. Repeats never observed keep their
// reference size.
func (m *Model) Amplify(rnd *rand.Rand, motif, refRep int) int {
	if motif < 1 || motif > m.MaxMotif || motif > m.Amplification.Len() || refRep >= m.MaxRepetition {
		return refRep
	}

	rep := int(m.Amplification.Generate(rnd, []byte{m.clampRep(refRep)}, motif - 1))
	if rep == 0 {
		rep = refRep
	}

	return rep
}

// Name of an orientation
func OrientationName(o int) string {
	if o < 0 || o >= Orientations {
		return "?"
	}

	return orientationNames[o]
}
