// Package profiler learns a model from reads aligned to a reference. Each
// read is realigned against a window of the reference around its mapping
// position, and the resulting edit operations feed the error profile of
// its end. Properly paired reads also provide the insert size and the
// orientation of the pairs, and reads spanning a tandem repeat provide its
// amplification.
package profiler

import (
	"fmt"
	"io"
	"math"
	"readsim/align"
	"readsim/cigar"
	"readsim/model"
	"readsim/oligo"
	"readsim/tandem"

	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"
)

// Mapping quality below which the records are skipped by default
const DefaultMinMapQ = 20

// Reader of alignment records, implemented by both sam.Reader and
// bam.Reader.
type Reader interface {
	Read() (*sam.Record, error)
}

type Stats struct {
	Records		uint64	// records read
	Skipped		uint64	// unmapped, secondary, supplementary or low quality records
	NoReference	uint64	// records mapped to an unknown reference
	Failed		uint64	// records the profile couldn't learn from
	Learned		uint64	// records learned
	Pairs		uint64	// pairs with insert size and orientation
	Repeats		uint64	// tandem repeats spanned by a read
}

func (s Stats) String() string {
	return fmt.Sprintf("records %d skipped %d no reference %d failed %d learned %d pairs %d repeats %d",
		s.Records, s.Skipped, s.NoReference, s.Failed, s.Learned, s.Pairs, s.Repeats)
}

type Profiler struct {
	Stats

	MinMapQ	byte

	mdl	*model.Model
	al	*align.Aligner
	refs	map[string][]byte
	reps	map[string][]tandem.Repeat
	log	log.FieldLogger
}

// Creates a profiler updating the model with reads aligned to the
// references, indexed by name.
func New(mdl *model.Model, refs map[string][]byte) *Profiler {
	return &Profiler{
		MinMapQ:	DefaultMinMapQ,
		mdl:		mdl,
		al:		align.New(align.SemiGlobal),
		refs:		refs,
		reps:		make(map[string][]tandem.Repeat),
		log:		log.StandardLogger(),
	}
}

func (p *Profiler) SetLogger(l log.FieldLogger) {
	p.log = l
}

func (p *Profiler) Model() *model.Model {
	return p.mdl
}

// Sets the scores used to realign the reads
func (p *Profiler) SetScores(sc align.Scores) error {
	return p.al.SetScores(sc)
}

// Reference nts added on each side of the reference span of a read of
// length n
func Flank(n int) int {
	if n < 2 {
		return 0
	}

	return 2 * int(math.Ceil(math.Log2(float64(n))))
}

// Processes all the records of the reader. progress, if not nil, is called
// after each record.
func (p *Profiler) Run(rd Reader, progress func()) error {
	for {
		rec, err := rd.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if err := p.Process(rec); err != nil {
			return err
		}

		if progress != nil {
			progress()
		}
	}
}

// Spans of the aligned part of the record, soft clips excluded
func spans(c sam.Cigar) (clip, read, ref int) {
	for i, co := range c {
		n := co.Len()
		switch co.Type() {
		case sam.CigarSoftClipped:
			if i == 0 || read == 0 {
				clip += n
			}

		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			read += n
			ref += n

		case sam.CigarInsertion:
			read += n

		case sam.CigarDeletion, sam.CigarSkipped:
			ref += n
		}
	}

	return
}

func (p *Profiler) repeats(name string, ref []byte) []tandem.Repeat {
	reps, ok := p.reps[name]
	if !ok {
		reps = tandem.Analyze(ref, p.mdl.MaxMotif)
		p.reps[name] = reps
		p.log.WithFields(log.Fields{"reference": name, "repeats": len(reps)}).Debug("tandem repeats")
	}

	return reps
}

// Learns from a single record. Records that can't be used are counted and
// skipped: the returned error is reserved for model failures.
func (p *Profiler) Process(rec *sam.Record) error {
	p.Records++
	if rec.Flags & (sam.Unmapped | sam.Secondary | sam.Supplementary) != 0 || rec.MapQ < p.MinMapQ || rec.Ref == nil {
		p.Skipped++
		return nil
	}

	reference, ok := p.refs[rec.Ref.Name()]
	if !ok {
		p.NoReference++
		return nil
	}

	clip, rlen, reflen := spans(rec.Cigar)
	seq := rec.Seq.Expand()
	if rlen == 0 || clip + rlen > len(seq) {
		p.Skipped++
		return nil
	}

	read := seq[clip:clip+rlen]
	var qual []byte
	if len(rec.Qual) >= clip + rlen {
		qual = append(qual, rec.Qual[clip:clip+rlen]...)
	}

	flank := Flank(rlen)
	from := rec.Pos - flank
	if from < 0 {
		from = 0
	}

	to := rec.Pos + reflen + flank
	if to > len(reference) {
		to = len(reference)
	}

	if from >= to {
		p.Failed++
		return nil
	}

	window := reference[from:to]
	ops, start := p.al.Align(window, read)
	ops = append([]byte(nil), ops...)
	_, span := cigar.Span(ops)

	if err := p.amplification(reference, from + start, ops, rec.Ref.Name()); err != nil {
		return err
	}

	// the profiles are indexed from the first sequenced nt
	ref := window[start:]
	if rec.Flags & sam.Reverse != 0 {
		oligo.Reverse(ops)
		oligo.Reverse(qual)
		read = oligo.RevComp(read)
		ref = oligo.RevComp(window[:start+span])
	}

	end := 0
	if rec.Flags & sam.Read2 != 0 {
		end = 1
	}

	if err := p.mdl.Profile(end).Update(ops, read, ref, qual); err != nil {
		p.Failed++
		p.log.WithFields(log.Fields{"read": rec.Name, "error": err}).Debug("profile not updated")
		return nil
	}

	p.Learned++
	return p.pair(rec)
}

// Insert size and orientation, learned once per pair from the first end
func (p *Profiler) pair(rec *sam.Record) error {
	f := rec.Flags
	if f & (sam.Paired | sam.ProperPair | sam.Read1) != sam.Paired | sam.ProperPair | sam.Read1 ||
		f & sam.MateUnmapped != 0 || rec.MateRef != rec.Ref || rec.TempLen == 0 {
		return nil
	}

	if err := p.mdl.UpdateInsertSize(rec.TempLen); err != nil {
		return err
	}

	r1rev := f & sam.Reverse != 0
	r2rev := f & sam.MateReverse != 0
	left, right := r1rev, r2rev
	if rec.Pos > rec.MatePos {
		left, right = r2rev, r1rev
	}

	if err := p.mdl.UpdateOrientation(Orientation(left, right)); err != nil {
		return err
	}

	p.Pairs++
	return nil
}

// Orientation of a pair given the strands of its leftmost and rightmost
// ends
func Orientation(leftReverse, rightReverse bool) int {
	switch {
	case !leftReverse && rightReverse:
		return model.FR
	case leftReverse && !rightReverse:
		return model.RF
	case !leftReverse:
		return model.FF
	}

	return model.RR
}

// Learns the repetitions of the tandem repeats entirely covered by the
// alignment starting at reference position pos. The alignment must extend
// at least one nt past each side of a repeat. Insertions next to a repeat
// count as part of it.
func (p *Profiler) amplification(reference []byte, pos int, ops []byte, name string) error {
	if p.mdl.MaxMotif < 1 {
		return nil
	}

	_, span := cigar.Span(ops)
	reps := tandem.Within(p.repeats(name, reference), pos + 1, pos + span - 1)
	if len(reps) == 0 {
		return nil
	}

	// read nts aligned to each reference position, and inserted before
	// each reference position
	cover := make([]int, span)
	ins := make([]int, span + 1)
	j := 0
	for _, op := range ops {
		switch op {
		case cigar.Match, cigar.Mismatch:
			cover[j]++
			j++

		case cigar.Insertion:
			ins[j]++

		case cigar.Deletion:
			j++
		}
	}

	for _, r := range reps {
		from := r.Pos - pos
		to := from + r.Len()
		n := ins[to]
		for k := from; k < to; k++ {
			n += cover[k] + ins[k]
		}

		rep := (n + r.Motif / 2) / r.Motif
		if rep < 1 {
			continue
		}

		if err := p.mdl.UpdateAmplification(r.Motif, r.Rep, rep); err != nil {
			return err
		}

		p.Repeats++
	}

	return nil
}
