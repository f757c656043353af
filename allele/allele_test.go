package allele

import (
	"bytes"
	"flag"
	"math/rand"
	"os"
	"testing"
	"readsim/cigar"
	"readsim/oligo"
)

var iternum = flag.Int("n", 100, "number of iterations")

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

// deleted minus inserted nts in the operations
func offset(ops []byte) (off int) {
	for _, op := range ops {
		switch op {
		case cigar.Deletion:
			off++
		case cigar.Insertion:
			off--
		}
	}

	return
}

func checkOff(t *testing.T, a *Allele) {
	t.Helper()
	if off := offset(a.Alignment()[:a.Alg()]); a.Off() != off {
		t.Fatalf("expected offset %d, got %d", off, a.Off())
	}

	if a.Pos() != a.Ref() - a.Off() {
		t.Fatalf("pos %d ref %d offset %d", a.Pos(), a.Ref(), a.Off())
	}
}

func check(t *testing.T, a *Allele, seq, ops string, ref, pos int) {
	t.Helper()
	if string(a.Sequence()) != seq || string(a.Alignment()) != ops {
		t.Fatalf("expected %s/%s, got %s/%s", seq, ops, a.Sequence(), a.Alignment())
	}

	if a.Ref() != ref || a.Pos() != pos || a.Alg() != len(ops) {
		t.Fatalf("unexpected cursors ref %d pos %d alg %d", a.Ref(), a.Pos(), a.Alg())
	}

	checkOff(t, a)
}

func TestSubstitution(t *testing.T) {
	a := New([]byte("A"))
	if err := a.ApplyVariation([]byte("A"), []byte("T")); err != nil {
		t.Fatal(err)
	}

	check(t, a, "T", "X", 1, 1)
}

func TestIndels(t *testing.T) {
	a := New([]byte("ACGTACGTAC"))
	if err := a.ApplyAt(2, []byte("G"), []byte("GTT")); err != nil {
		t.Fatal(err)
	}
	check(t, a, "ACGTT", "===II", 3, 5)

	if err := a.ApplyAt(4, []byte("ACG"), []byte("c")); err != nil {
		t.Fatal(err)
	}
	check(t, a, "ACGTTTc", "===II=XDD", 7, 7)

	if err := a.Finish(); err != nil {
		t.Fatal(err)
	}
	check(t, a, "ACGTTTcTAC", "===II=XDD===", 10, 10)

	if a.Off() != 0 {
		t.Fatalf("unexpected offset %d", a.Off())
	}
}

func TestCase(t *testing.T) {
	a := New([]byte("acgt"))
	if err := a.ApplyVariation([]byte("ACG"), []byte("aCT")); err != nil {
		t.Fatal(err)
	}

	check(t, a, "aCT", "==X", 3, 3)
}

func TestErrors(t *testing.T) {
	a := New([]byte("ACGTACGT"))
	if err := a.ApplyAt(1, []byte("G"), []byte("T")); err != ErrIncoherent {
		t.Fatalf("expected ErrIncoherent, got %v", err)
	}

	// the reference was copied up to the variation
	check(t, a, "A", "=", 1, 1)

	if err := a.ApplyAt(2, []byte("GTAC"), []byte("G")); err != nil {
		t.Fatal(err)
	}
	check(t, a, "ACG", "===DDD", 6, 3)

	// position 3 was deleted
	if err := a.ApplyAt(3, []byte("T"), []byte("A")); err != ErrCollision {
		t.Fatalf("expected ErrCollision, got %v", err)
	}

	if err := a.Copy(4); err != ErrCollision {
		t.Fatalf("expected ErrCollision, got %v", err)
	}

	if err := a.ApplyAt(20, []byte("A"), []byte("T")); err != ErrIncoherent {
		t.Fatalf("expected ErrIncoherent, got %v", err)
	}

	// the reference allele runs past the end
	if err := a.ApplyAt(7, []byte("TA"), []byte("G")); err != ErrIncoherent {
		t.Fatalf("expected ErrIncoherent past the end, got %v", err)
	}
}

func TestSeek(t *testing.T) {
	// reference  AC--GTACGT
	// allele     ACTTG--CGT
	a := New([]byte("ACGTACGT"))
	a.ApplyAt(1, []byte("C"), []byte("CTT"))
	a.ApplyAt(2, []byte("GTA"), []byte("G"))
	a.Finish()
	check(t, a, "ACTTGCGT", "==II=DD===", 8, 8)
	if cigar.String(a.Alignment()) != "2=2I1=2D3=" {
		t.Fatalf("unexpected alignment %s", cigar.String(a.Alignment()))
	}

	tests := []struct {
		target	int
		pos	int
		alg	int
	}{
		{0, 0, 0},
		{2, 2, 2},	// before the insertion
		{3, 5, 5},
		{5, 5, 7},	// after the deletion
		{4, 5, 6},
		{8, 8, 10},
		{1, 1, 1},
		{6, 6, 8},
		{2, 2, 2},
	}

	for _, tc := range tests {
		pos, err := a.Seek(tc.target)
		if err != nil {
			t.Fatal(err)
		}

		if pos != tc.pos || a.Ref() != tc.target || a.Alg() != tc.alg {
			t.Fatalf("seek %d: expected pos %d alg %d, got pos %d ref %d alg %d", tc.target, tc.pos, tc.alg, pos, a.Ref(), a.Alg())
		}
		checkOff(t, a)
	}

	if _, err := a.Seek(9); err != ErrRange {
		t.Fatalf("expected ErrRange, got %v", err)
	}

	if _, err := a.Seek(-1); err != ErrRange {
		t.Fatalf("expected ErrRange, got %v", err)
	}

	// no writes until the cursor is back at the end
	if err := a.Finish(); err != ErrCursor {
		t.Fatalf("expected ErrCursor, got %v", err)
	}

	a.SeekEnd()
	if a.Ref() != 8 || a.Pos() != 8 || a.Alg() != 10 || a.Off() != 0 {
		t.Fatalf("SeekEnd: ref %d pos %d alg %d off %d", a.Ref(), a.Pos(), a.Alg(), a.Off())
	}

	// between the insertion and the deletion
	a.Seek(3)
	if a.Off() != -2 {
		t.Fatalf("expected offset -2, got %d", a.Off())
	}
}

func randomSeq(rnd *rand.Rand, l int) []byte {
	s := make([]byte, l)
	for i := range s {
		s[i] = oligo.Char(byte(rnd.Intn(4)))
	}

	return s
}

// random variations keep the allele consistent with its alignment, and
// Seek lands on the same positions walking in both directions
func TestRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for it := 0; it < *iternum; it++ {
		reference := randomSeq(rnd, 200)
		a := New(reference)
		for p := rnd.Intn(10); p < len(reference) - 5; p += 1 + rnd.Intn(20) {
			ra := reference[p:p + 1 + rnd.Intn(4)]
			aa := randomSeq(rnd, 1 + rnd.Intn(4))
			if err := a.ApplyAt(p, ra, aa); err != nil && err != ErrCollision {
				t.Fatal(err)
			}

			checkOff(t, a)
		}

		if err := a.Finish(); err != nil {
			t.Fatal(err)
		}

		rl, fl := cigar.Span(a.Alignment())
		if rl != len(a.Sequence()) || fl != len(reference) {
			t.Fatalf("alignment spans %d/%d, sequence %d, reference %d", rl, fl, len(a.Sequence()), len(reference))
		}

		// replay the alignment
		for i, j, k := 0, 0, 0; k < len(a.Alignment()); k++ {
			switch a.Alignment()[k] {
			case cigar.Match:
				if a.Sequence()[i] != reference[j] {
					t.Fatalf("match of different nts at %d", k)
				}
				i++
				j++

			case cigar.Mismatch:
				i++
				j++

			case cigar.Insertion:
				i++

			case cigar.Deletion:
				j++
			}
		}

		fwd := make([]int, len(reference) + 1)
		a.Seek(0)
		for p := range fwd {
			fwd[p], _ = a.Seek(p)
		}

		for p := len(reference); p >= 0; p-- {
			pos, _ := a.Seek(p)
			if pos != fwd[p] {
				t.Fatalf("seek %d: forward %d backward %d", p, fwd[p], pos)
			}
			checkOff(t, a)
		}

		for n := 0; n < 50; n++ {
			p := rnd.Intn(len(reference) + 1)
			if pos, _ := a.Seek(p); pos != fwd[p] {
				t.Fatalf("random seek %d: expected %d, got %d", p, fwd[p], pos)
			}
			checkOff(t, a)
		}
	}
}

func TestReset(t *testing.T) {
	a := New([]byte("ACGT"))
	a.ApplyAt(1, []byte("C"), []byte("G"))
	a.Finish()

	a.Reset([]byte("TTTT"))
	check(t, a, "", "", 0, 0)
	a.Finish()
	if !bytes.Equal(a.Sequence(), []byte("TTTT")) {
		t.Fatalf("unexpected sequence %s", a.Sequence())
	}
}
