// The oligo package defines the nucleotide codec shared by the error
// profiles and the simulator, plus a few helpers on raw sequences.
package oligo

const (
	A = 0
	C = 1
	G = 2
	T = 3
	N = 4		// anything that is not A, C, G or T
)

// number of symbols produced by Nt, including N
const Alphabet = 5

var ntNames = "ACGTN"

// Converts a nucleotide character (case insensitive) to its numeric value.
// Anything that is not a valid nucleotide is converted to N.
func Nt(c byte) byte {
	switch c {
	case 'A', 'a':
		return A
	case 'C', 'c':
		return C
	case 'G', 'g':
		return G
	case 'T', 't':
		return T
	}

	return N
}

// Converts a numeric value of a nucleotide to its (upper case) character.
// Out of range values are converted to 'N'.
func Char(nt byte) byte {
	if int(nt) >= len(ntNames) {
		return 'N'
	}

	return ntNames[nt]
}

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = 'N'
	}

	pairs := []string{"AT", "TA", "CG", "GC", "at", "ta", "cg", "gc", "NN", "nn"}
	for _, p := range pairs {
		complement[p[0]] = p[1]
	}
}

// Complement of a single nucleotide character. Preserves the case,
// unknown characters are converted to 'N'.
func Complement(c byte) byte {
	return complement[c]
}

// Returns a new slice with the reverse complement of seq.
func RevComp(seq []byte) []byte {
	ret := make([]byte, len(seq))
	for i, c := range seq {
		ret[len(seq)-1-i] = Complement(c)
	}

	return ret
}

// Reverses the slice in place
func Reverse(s []byte) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
