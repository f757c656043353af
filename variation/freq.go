package variation

import (
	"strconv"
	"strings"
)

// Same frequency for all n alleles
func Linear(n int) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}

	return p
}

// Parses the value of a VCF AF field: the frequencies of the n-1
// alternative alleles. The reference allele gets the rest.
func ParseAF(n int, af string) ([]float64, bool) {
	fs := strings.Split(af, ",")
	if len(fs) != n - 1 && len(fs) != n {
		return nil, false
	}

	p := make([]float64, n)
	off := n - len(fs)
	sum := 0.0
	for i, f := range fs {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 {
			return nil, false
		}

		p[i + off] = v
		sum += v
	}

	if off == 1 {
		p[0] = 1 - sum
		if p[0] < 0 {
			p[0] = 0
		}
	}

	return normalize(p)
}

// Parses the value of a dbSNP FREQ field, e.g.
// "1000Genomes:0.9,0.1|GnomAD:0.95,0.05". Only the first study is used.
// Missing values ('.') share what is left by the known ones.
func ParseFreq(n int, freq string) ([]float64, bool) {
	study := strings.SplitN(freq, "|", 2)[0]
	ls := strings.SplitN(study, ":", 2)
	if len(ls) != 2 {
		return nil, false
	}

	fs := strings.Split(ls[1], ",")
	if len(fs) != n {
		return nil, false
	}

	p := make([]float64, n)
	dots := 0
	sum := 0.0
	for i, f := range fs {
		if f == "." {
			p[i] = -1
			dots++
			continue
		}

		v, err := strconv.ParseFloat(f, 64)
		if err != nil || v < 0 {
			return nil, false
		}

		p[i] = v
		sum += v
	}

	rest := 0.0
	if dots > 0 && sum < 1 {
		rest = (1 - sum) / float64(dots)
	}

	for i := range p {
		if p[i] < 0 {
			p[i] = rest
		}
	}

	return normalize(p)
}

func normalize(p []float64) ([]float64, bool) {
	sum := 0.0
	for _, v := range p {
		sum += v
	}

	if sum <= 0 {
		return nil, false
	}

	for i := range p {
		p[i] /= sum
	}

	return p, true
}

// Frequencies of the n alleles of a VCF record from its INFO column. AF is
// preferred over FREQ, if neither is usable all alleles are equally likely.
func Frequencies(n int, info string) []float64 {
	var af, freq string
	for _, kv := range strings.Split(info, ";") {
		switch {
		case strings.HasPrefix(kv, "AF="):
			af = kv[3:]
		case strings.HasPrefix(kv, "FREQ="):
			freq = kv[5:]
		}
	}

	if af != "" {
		if p, ok := ParseAF(n, af); ok {
			return p
		}
	}

	if freq != "" {
		if p, ok := ParseFreq(n, freq); ok {
			return p
		}
	}

	return Linear(n)
}
