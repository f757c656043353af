// Package simulator samples reads from the sequences of a genome. Each
// read is generated by an error model from a window of the sequence, and
// paired reads are taken from the two ends of a fragment whose size and
// orientation come from the model.
package simulator

import (
	"errors"
	"fmt"
	"math/rand"
	"readsim/cigar"
	"readsim/errmdl"
	"readsim/io/fastq"
	"readsim/model"
	"readsim/oligo"

	log "github.com/sirupsen/logrus"
)

// Default fragment size when the model has no insert size statistics
const DefaultInsertSize = 500

var ErrGenerator = errors.New("no error model")

type Stats struct {
	Reads	uint64	// reads written, pairs count twice
	Cut	uint64	// reads discarded because they ran past the end of the sequence
	Empty	uint64	// empty reads discarded
}

func (s Stats) String() string {
	return fmt.Sprintf("reads %d cut %d empty %d", s.Reads, s.Cut, s.Empty)
}

type Simulator struct {
	Stats

	Coverage	float64	// average number of reads covering each nt
	InsertSize	int	// fragment size when the model has no statistics

	rnd	*rand.Rand
	mdl	*model.Model
	ends	[2]errmdl.Generator
	w	[2]*fastq.Writer
	log	log.FieldLogger
	n	uint64
}

// Creates a simulator writing to w1, and to w2 the second ends of the pairs.
// If w2 is nil the reads are single ended.
func New(rnd *rand.Rand, w1, w2 *fastq.Writer) *Simulator {
	return &Simulator{
		Coverage:	1,
		InsertSize:	DefaultInsertSize,
		rnd:		rnd,
		w:		[2]*fastq.Writer{w1, w2},
		log:		log.StandardLogger(),
	}
}

func (s *Simulator) SetLogger(l log.FieldLogger) {
	s.log = l
}

// Uses the error profiles, insert sizes and orientations of the model. A
// second end profile that was never learned is replaced by the first.
func (s *Simulator) SetModel(m *model.Model) {
	s.mdl = m
	s.ends[0], s.ends[1] = m.Single, m.Pair
	if m.Pair.ReadLen() == 0 {
		s.ends[1] = m.Single
	}
}

// Uses the same error model for both ends
func (s *Simulator) SetGenerator(g errmdl.Generator) {
	s.ends[0], s.ends[1] = g, g
}

func (s *Simulator) Paired() bool {
	return s.w[1] != nil
}

// Number of reads (or pairs) needed to reach the coverage on a sequence
func (s *Simulator) count(size int) int {
	n := s.ends[0].ReadLen()
	if s.Paired() {
		n += s.ends[1].ReadLen()
	}

	if n == 0 {
		return 0
	}

	return int(s.Coverage * float64(size) / float64(n) + 0.5)
}

func (s *Simulator) insertSize() int {
	if s.mdl != nil && s.mdl.HasInsertSize() {
		return s.mdl.SampleInsertSize(s.rnd)
	}

	return s.InsertSize
}

func (s *Simulator) orientation() int {
	if s.mdl != nil {
		return s.mdl.SampleOrientation(s.rnd)
	}

	return model.FR
}

// Samples the reads of a sequence. progress, if not nil, is called after
// each read or pair.
func (s *Simulator) Simulate(label string, seq []byte, progress func()) (err error) {
	if s.ends[0] == nil {
		return ErrGenerator
	}

	rc := oligo.RevComp(seq)
	n := s.count(len(seq))
	s.log.WithFields(log.Fields{"sequence": label, "length": len(seq), "reads": n}).Debug("simulating")
	for i := 0; i < n; i++ {
		if s.Paired() {
			err = s.pair(label, seq, rc)
		} else {
			err = s.single(label, seq, rc)
		}

		if err != nil {
			return
		}

		if progress != nil {
			progress()
		}
	}

	return
}

func min(a, b int) int {
	if a < b {
		return a
	}

	return b
}

func strand(reverse bool) byte {
	if reverse {
		return '-'
	}

	return '+'
}

// Writes the read if it is complete. pos is the 0-based position in the
// forward strand of the first sequenced nt.
func (s *Simulator) write(end int, id, label string, pos int, reverse bool, r *errmdl.Read) error {
	comment := fmt.Sprintf("%d %s:%d%c %s", end + 1, label, pos + 1, strand(reverse), cigar.String(r.Ops))
	if err := s.w[end].Write(id, comment, r.Seq, r.Qual); err != nil {
		return err
	}

	s.Reads++
	return nil
}

// Checks that the read can be written, counting the discarded ones
func (s *Simulator) keep(r *errmdl.Read) bool {
	switch {
	case r.Cut:
		s.Cut++
		return false

	case len(r.Seq) == 0:
		s.Empty++
		return false
	}

	return true
}

func (s *Simulator) single(label string, seq, rc []byte) error {
	if len(seq) == 0 {
		return nil
	}

	s.n++
	pos := s.rnd.Intn(len(seq))
	reverse := s.rnd.Intn(2) == 1

	var r *errmdl.Read
	if reverse {
		r = s.ends[0].GenerateRead(s.rnd, rc[len(seq)-1-pos:])
	} else {
		r = s.ends[0].GenerateRead(s.rnd, seq[pos:])
	}

	if !s.keep(r) {
		return nil
	}

	return s.write(0, fmt.Sprintf("%s_%d", label, s.n), label, pos, reverse, r)
}

// Strands of the first and second end of a pair, the first end is read
// from the start of the fragment
var strands = [model.Orientations][2]bool{
	model.FR:	{false, true},
	model.RF:	{true, false},
	model.FF:	{false, false},
	model.RR:	{true, true},
}

func (s *Simulator) pair(label string, seq, rc []byte) error {
	size := s.insertSize()
	if size < 1 {
		size = 1
	}

	if size > len(seq) {
		size = len(seq)
	}

	if size == 0 {
		return nil
	}

	s.n++
	start := s.rnd.Intn(len(seq) - size + 1)
	o := s.orientation()
	if o < 0 || o >= model.Orientations {
		o = model.FR
	}

	// fragments come from either strand of the sequence
	flip := s.rnd.Intn(2) == 1

	var reads [2]*errmdl.Read
	var pos [2]int
	var rev [2]bool
	for end := 0; end < 2; end++ {
		rlen := s.ends[end].ReadLen()
		k := min(size, rlen)
		if k < 1 {
			k = 1
		}
		reverse := strands[o][end]

		// fragment coordinates of the first sequenced nt
		var p int
		switch {
		case end == 0 && !reverse:
			p = 0
		case end == 0:
			p = k - 1
		case reverse:
			p = size - 1
		default:
			p = size - k
		}

		// forward strand coordinates
		if flip {
			p = start + size - 1 - p
			reverse = !reverse
		} else {
			p = start + p
		}

		// reads don't extend past the fragment
		var window []byte
		if reverse {
			window = rc[len(seq)-1-p:len(seq)-start]
		} else {
			window = seq[p:start+size]
		}

		reads[end] = s.ends[end].GenerateRead(s.rnd, window)
		pos[end], rev[end] = p, reverse
	}

	if !s.keep(reads[0]) || !s.keep(reads[1]) {
		return nil
	}

	id := fmt.Sprintf("%s_%d", label, s.n)
	for end := 0; end < 2; end++ {
		if err := s.write(end, id, label, pos[end], rev[end], reads[end]); err != nil {
			return err
		}
	}

	return nil
}
