package tandem

import (
	"reflect"
	"testing"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		ref	string
		max	int
		exp	[]Repeat
	}{
		{"ACGT", 4, nil},
		{"AAAA", 3, []Repeat{{0, 1, 4}}},
		{"CACACAG", 3, []Repeat{{0, 2, 3}}},
		{"TCAT", 3, nil},
		{"GCACACAG", 3, []Repeat{{1, 2, 3}}},
		{"NNNAAT", 2, []Repeat{{3, 1, 2}}},
		{"ACGACGTT", 3, []Repeat{{0, 3, 2}, {6, 1, 2}}},
		{"acgACGtt", 3, []Repeat{{0, 3, 2}, {6, 1, 2}}},
		{"ACGACG", 2, nil},
		{"NNNN", 4, nil},
	}

	for _, tc := range tests {
		reps := Analyze([]byte(tc.ref), tc.max)
		if !reflect.DeepEqual(reps, tc.exp) {
			t.Fatalf("%s: expected %v, got %v", tc.ref, tc.exp, reps)
		}
	}
}

// AAAA is both 4x"A" and 2x"AA", the shorter motif wins
func TestShorterMotif(t *testing.T) {
	reps := Analyze([]byte("AAAA"), 2)
	if len(reps) != 1 || reps[0].Motif != 1 || reps[0].Rep != 4 {
		t.Fatalf("unexpected repeats %v", reps)
	}
}

func TestWithin(t *testing.T) {
	reps := Analyze([]byte("ACGACGTTGGCC"), 3)
	if len(reps) != 4 {
		t.Fatalf("unexpected repeats %v", reps)
	}

	in := Within(reps, 1, 11)
	if !reflect.DeepEqual(in, []Repeat{{6, 1, 2}, {8, 1, 2}}) {
		t.Fatalf("unexpected repeats %v", in)
	}

	if Analyze([]byte("AAAA"), 0) != nil {
		t.Fatalf("repeats found with no motif")
	}
}
