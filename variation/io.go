package variation

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"readsim/io/csv"
)

func parsePos(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 {
		return 0, fmt.Errorf("%w: %s", ErrPos, s)
	}

	return p - 1, nil
}

func validAllele(a string) bool {
	if a == "" {
		return false
	}

	for i := 0; i < len(a); i++ {
		switch a[i] {
		case 'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n':
		default:
			return false
		}
	}

	return true
}

// Reads user defined variations, one per line:
//
//	region	pos	ref	allele_1 ... allele_ploidy
//
// Positions are 1-based.
func ReadUDV(r io.Reader, ploidy int) (vars []*Variation, err error) {
	err = csv.ParseReader(r, "\t", func(line int, fs []string) error {
		if len(fs) < 3 + ploidy {
			return fmt.Errorf("%w: expected %d, got %d", ErrFields, 3 + ploidy, len(fs))
		}

		pos, err := parsePos(fs[1])
		if err != nil {
			return err
		}

		v := &Variation{Region: fs[0], Pos: pos, Ref: []byte(fs[2])}
		for _, a := range fs[3:3+ploidy] {
			v.Alts = append(v.Alts, []byte(a))
		}

		vars = append(vars, v)
		return nil
	})

	return
}

// Reads the records of a VCF file. The reference allele is the first of
// the alleles of each variation. Records with symbolic or missing
// alternative alleles are skipped.
func ReadVCF(r io.Reader) (vars []*Variation, err error) {
	err = csv.ParseReader(r, "\t", func(line int, fs []string) error {
		// CHROM POS ID REF ALT QUAL FILTER INFO
		if len(fs) < 5 {
			return fmt.Errorf("%w: expected at least 5, got %d", ErrFields, len(fs))
		}

		pos, err := parsePos(fs[1])
		if err != nil {
			return err
		}

		if !validAllele(fs[3]) {
			return nil
		}

		alts := strings.Split(fs[4], ",")
		for _, a := range alts {
			if !validAllele(a) {
				return nil
			}
		}

		v := &Variation{Region: fs[0], Pos: pos, Ref: []byte(fs[3])}
		v.Alts = append(v.Alts, v.Ref)
		for _, a := range alts {
			v.Alts = append(v.Alts, []byte(a))
		}

		info := ""
		if len(fs) > 7 {
			info = fs[7]
		}

		v.Freq = Frequencies(len(v.Alts), info)
		vars = append(vars, v)
		return nil
	})

	return
}

func LoadUDV(fname string, ploidy int) ([]*Variation, error) {
	var vars []*Variation

	r, err := csv.Open(fname)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	vars, err = ReadUDV(r, ploidy)
	if err != nil {
		err = fmt.Errorf("%s: %w", fname, err)
	}

	return vars, err
}

func LoadVCF(fname string) ([]*Variation, error) {
	var vars []*Variation

	r, err := csv.Open(fname)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	vars, err = ReadVCF(r)
	if err != nil {
		err = fmt.Errorf("%s: %w", fname, err)
	}

	return vars, err
}

// Translates region names, e.g. FASTA labels to VCF chromosome names
type Dictionary map[string]string

// Reads a tab separated dictionary: label and translation, one per line
func ReadDictionary(r io.Reader) (Dictionary, error) {
	d := make(Dictionary)
	err := csv.ParseReader(r, "\t", func(line int, fs []string) error {
		if len(fs) < 2 {
			return fmt.Errorf("%w: expected 2, got %d", ErrFields, len(fs))
		}

		d[fs[0]] = fs[1]
		return nil
	})

	return d, err
}

func LoadDictionary(fname string) (Dictionary, error) {
	r, err := csv.Open(fname)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return ReadDictionary(r)
}

// Returns the translation of the label, or the label itself if there is
// none.
func (d Dictionary) Translate(label string) string {
	if t, ok := d[label]; ok {
		return t
	}

	return label
}
