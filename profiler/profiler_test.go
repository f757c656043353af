package profiler

import (
	"strings"
	"testing"
	"readsim/cigar"
	"readsim/model"
	"readsim/oligo"

	"github.com/biogo/hts/sam"
)

const reference = "GATCCTGACGTAGCATCAGTCTAGCTGAAAAAGTCGATGCATCGTCAGTCATGCACTGAC"

const samText = `@HD	VN:1.5	SO:unsorted
@SQ	SN:chr1	LN:60
@SQ	SN:chr2	LN:10
r1	0	chr1	11	60	20M	*	0	0	TAGCATCAGTCTAGCTGAAA	IIIIIIIIIIIIIIIIIIII
r2	144	chr1	11	60	20M	*	0	0	TAGCAGCAGTCTAGCTGAAA	*
r3	4	*	0	0	*	*	0	0	ACGT	*
r4	0	chr1	11	5	20M	*	0	0	TAGCATCAGTCTAGCTGAAA	*
r5	256	chr1	11	60	20M	*	0	0	TAGCATCAGTCTAGCTGAAA	*
r6	0	chr2	1	60	4M	*	0	0	ACGT	*
r7	99	chr1	11	60	20M	=	31	40	TAGCATCAGTCTAGCTGAAA	*
r8	0	chr1	19	60	9M1I13M	*	0	0	GTCTAGCTGAAAAAAGTCGATGC	*
`

func newProfiler(t *testing.T) *Profiler {
	m, err := model.New(1000, 10, 4, 10)
	if err != nil {
		t.Fatal(err)
	}

	return New(m, map[string][]byte{"chr1": []byte(reference)})
}

func TestFlank(t *testing.T) {
	for _, c := range []struct{ n, flank int }{{0, 0}, {1, 0}, {2, 2}, {20, 10}, {32, 10}, {33, 12}, {150, 16}} {
		if f := Flank(c.n); f != c.flank {
			t.Fatalf("read length %d: expected flank %d, got %d", c.n, c.flank, f)
		}
	}
}

func TestOrientation(t *testing.T) {
	if Orientation(false, true) != model.FR || Orientation(true, false) != model.RF ||
		Orientation(false, false) != model.FF || Orientation(true, true) != model.RR {
		t.Fatalf("unexpected orientations")
	}
}

func TestRun(t *testing.T) {
	rd, err := sam.NewReader(strings.NewReader(samText))
	if err != nil {
		t.Fatal(err)
	}

	p := newProfiler(t)
	n := 0
	if err := p.Run(rd, func() { n++ }); err != nil {
		t.Fatal(err)
	}

	if n != 8 || p.Records != 8 || p.Skipped != 3 || p.NoReference != 1 || p.Learned != 4 || p.Pairs != 1 || p.Failed != 0 {
		t.Fatalf("unexpected stats %v", p.Stats)
	}

	m := p.Model()
	if single, pair := m.Reads(); single != 3 || pair != 1 {
		t.Fatalf("expected 3 single and 1 pair reads, got %d %d", single, pair)
	}

	if c := m.Single.Quality.Count([]byte{cigar.CodeMatch}, 0, 40); c != 1 {
		t.Fatalf("expected 1 quality count, got %d", c)
	}

	// r1, r7 and r8
	if c := m.Single.Distribution.Count(nil, 19, cigar.CodeMatch); c != 3 {
		t.Fatalf("expected 3 matches at position 19, got %d", c)
	}

	// the reverse read is learned from its first sequenced nt
	if c := m.Pair.Distribution.Count(nil, 14, cigar.CodeMismatch); c != 1 {
		t.Fatalf("mismatch not found at the expected position")
	}

	if c := m.Pair.Mismatch.Count([]byte{oligo.Nt('A')}, 14, oligo.Nt('C')); c != 1 {
		t.Fatalf("mismatch not learned on the read strand")
	}

	if m.InsertSize.Count(nil, 0, byte(m.Bucket(40))) != 1 || m.Orientation.Count(nil, 0, model.FR) != 1 {
		t.Fatalf("pair not learned")
	}

	// the homopolymer of 5 As is read as 6
	if c := m.Amplification.Count([]byte{5}, 0, 6); c != 1 {
		t.Fatalf("amplification not learned")
	}
}

func TestSoftClip(t *testing.T) {
	in := "@SQ\tSN:chr1\tLN:60\n" +
		"c1\t0\tchr1\t11\t60\t3S20M2S\t*\t0\t0\tGGGTAGCATCAGTCTAGCTGAAACC\t*\n"

	rd, err := sam.NewReader(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}

	p := newProfiler(t)
	if err := p.Run(rd, nil); err != nil {
		t.Fatal(err)
	}

	if p.Learned != 1 {
		t.Fatalf("unexpected stats %v", p.Stats)
	}

	// clipped nts are not learned as errors
	if m := p.Model(); m.Single.Distribution.Count(nil, 0, cigar.CodeMatch) != 1 || m.Single.Alignment.Len() != 21 {
		t.Fatalf("clipped read not learned as a perfect match")
	}
}
