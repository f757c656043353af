package variation

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"
)

const vcf = `##fileformat=VCFv4.1
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
1	10	rs1	A	G	.	PASS	AF=0.25
1	5	rs2	AC	A,ACC	.	PASS	FREQ=1000Genomes:0.5,.,.|GnomAD:0.1,0.2,0.7
1	20	rs3	G	<DEL>	.	PASS	.
2	7	rs4	T	C	.	PASS	DP=10
2	8	rs5	T	.	.	PASS	.
`

func approx(a, b float64) bool {
	return math.Abs(a - b) < 1e-9
}

func TestReadVCF(t *testing.T) {
	vars, err := ReadVCF(strings.NewReader(vcf))
	if err != nil {
		t.Fatal(err)
	}

	if len(vars) != 3 {
		t.Fatalf("expected 3 variations, got %d", len(vars))
	}

	v := vars[0]
	if v.Region != "1" || v.Pos != 9 || string(v.Ref) != "A" || len(v.Alts) != 2 || string(v.Alts[1]) != "G" {
		t.Fatalf("unexpected variation %+v", v)
	}

	if !approx(v.Freq[0], 0.75) || !approx(v.Freq[1], 0.25) {
		t.Fatalf("unexpected AF frequencies %v", v.Freq)
	}

	v = vars[1]
	if v.Pos != 4 || len(v.Alts) != 3 || string(v.Alts[0]) != "AC" || v.End() != 6 {
		t.Fatalf("unexpected variation %+v", v)
	}

	if !approx(v.Freq[0], 0.5) || !approx(v.Freq[1], 0.25) || !approx(v.Freq[2], 0.25) {
		t.Fatalf("unexpected FREQ frequencies %v", v.Freq)
	}

	v = vars[2]
	if v.Region != "2" || !approx(v.Freq[0], 0.5) || !approx(v.Freq[1], 0.5) || v.User() {
		t.Fatalf("unexpected variation %+v", v)
	}

	if _, err := ReadVCF(strings.NewReader("1\t0\t.\tA\tG\n")); !errors.Is(err, ErrPos) {
		t.Fatalf("expected ErrPos, got %v", err)
	}
}

func TestReadUDV(t *testing.T) {
	in := "chr1\t3\tA\tA\tTT\n# comment\nchr2\t1\tAC\tA\tG\n"
	vars, err := ReadUDV(strings.NewReader(in), 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(vars) != 2 || vars[0].Pos != 2 || string(vars[0].Alts[1]) != "TT" || !vars[0].User() {
		t.Fatalf("unexpected variations %+v", vars)
	}

	rnd := rand.New(rand.NewSource(1))
	if string(vars[1].Allele(rnd, 0)) != "A" || string(vars[1].Allele(rnd, 1)) != "G" || string(vars[1].Allele(rnd, 2)) != "AC" {
		t.Fatalf("unexpected alleles")
	}

	if _, err := ReadUDV(strings.NewReader(in), 3); !errors.Is(err, ErrFields) {
		t.Fatalf("expected ErrFields, got %v", err)
	}
}

func TestFrequencies(t *testing.T) {
	p := Frequencies(3, "DP=3;AF=0.1,0.3")
	if !approx(p[0], 0.6) || !approx(p[1], 0.1) || !approx(p[2], 0.3) {
		t.Fatalf("unexpected frequencies %v", p)
	}

	// AF not usable, falls back to FREQ
	p = Frequencies(2, "AF=x;FREQ=S:0.2,0.6")
	if !approx(p[0], 0.25) || !approx(p[1], 0.75) {
		t.Fatalf("unexpected frequencies %v", p)
	}

	p = Frequencies(4, "")
	for _, v := range p {
		if !approx(v, 0.25) {
			t.Fatalf("unexpected frequencies %v", p)
		}
	}

	if _, ok := ParseFreq(2, "0.5,0.5"); ok {
		t.Fatalf("FREQ without study accepted")
	}

	if _, ok := ParseAF(3, "0.5"); ok {
		t.Fatalf("short AF accepted")
	}
}

func TestPick(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	p := []float64{0.2, 0, 0.8}
	var n [3]int
	for i := 0; i < 100000; i++ {
		n[Pick(rnd, p)]++
	}

	if n[1] != 0 || math.Abs(float64(n[0]) / 100000 - 0.2) > 0.01 {
		t.Fatalf("unexpected distribution %v", n)
	}

	// the draw is always past the end
	if Pick(rnd, []float64{0, 1e-12, 0}) != 1 {
		t.Fatalf("rounding fallback failed")
	}

	if Pick(rnd, []float64{0, 0}) != 0 {
		t.Fatalf("empty distribution fallback failed")
	}
}

func TestSet(t *testing.T) {
	vars, _ := ReadVCF(strings.NewReader(vcf))
	s := NewSet(vars)
	if s.Len() != 3 || len(s.Regions()) != 2 || s.Regions()[0] != "1" {
		t.Fatalf("unexpected set %v", s.Regions())
	}

	r := s.Region("1")
	if len(r) != 2 || r[0].Pos != 4 || r[1].Pos != 9 {
		t.Fatalf("region not sorted")
	}

	if s.Region("X") != nil {
		t.Fatalf("unexpected region")
	}

	a := &Variation{Region: "1", Pos: 6, Ref: []byte("A")}
	if !a.Overlaps(r[0]) || a.Overlaps(r[1]) {
		t.Fatalf("unexpected overlaps")
	}
}

func TestDictionary(t *testing.T) {
	d, err := ReadDictionary(strings.NewReader("chr1\t1\nchrM\tMT\n"))
	if err != nil {
		t.Fatal(err)
	}

	if d.Translate("chr1") != "1" || d.Translate("chrM") != "MT" || d.Translate("chr2") != "chr2" {
		t.Fatalf("unexpected translations %v", d)
	}

	if _, err := ReadDictionary(strings.NewReader("chr1\n")); !errors.Is(err, ErrFields) {
		t.Fatalf("expected ErrFields, got %v", err)
	}
}
