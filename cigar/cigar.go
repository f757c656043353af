// Package cigar defines the edit operations used to describe how a read
// (or an allele) corresponds to a reference, one symbol per aligned column.
//
// The letters follow the SAM convention: an insertion is a base present
// in the read but not in the reference, a deletion is a reference base
// missing from the read.
package cigar

import (
	"errors"
	"strconv"
	"strings"
)

const (
	Match		= '='
	Mismatch	= 'X'
	Insertion	= 'I'	// consumes the read only
	Deletion	= 'D'	// consumes the reference only
)

// Numeric codes of the operations as stored in the statistical sources.
// The order is part of the model file format.
const (
	CodeMatch	= 0
	CodeInsertion	= 1
	CodeDeletion	= 2
	CodeMismatch	= 3

	// number of operation codes
	Codes = 4
)

var ErrOp = errors.New("invalid edit operation")

var ops = [Codes]byte{Match, Insertion, Deletion, Mismatch}

// Converts an operation to its numeric code. '!' is accepted as an
// alias for a mismatch.
func Code(op byte) (byte, error) {
	switch op {
	case Match:
		return CodeMatch, nil
	case Insertion:
		return CodeInsertion, nil
	case Deletion:
		return CodeDeletion, nil
	case Mismatch, '!':
		return CodeMismatch, nil
	}

	return 0, ErrOp
}

// Converts a numeric code back to the operation. Returns 0 if the code
// is out of range.
func Op(code byte) byte {
	if int(code) >= Codes {
		return 0
	}

	return ops[code]
}

// Converts a string of operations to codes
func Encode(s []byte) (ret []byte, err error) {
	ret = make([]byte, len(s))
	for i, op := range s {
		ret[i], err = Code(op)
		if err != nil {
			return nil, err
		}
	}

	return
}

// Converts a string of codes to operations
func Decode(codes []byte) []byte {
	ret := make([]byte, len(codes))
	for i, c := range codes {
		ret[i] = Op(c)
	}

	return ret
}

// Returns true if the operation consumes a base of the read
func ConsumesRead(op byte) bool {
	return op != Deletion
}

// Returns true if the operation consumes a base of the reference
func ConsumesRef(op byte) bool {
	return op != Insertion
}

// Returns the number of read and reference bases consumed by the
// operations
func Span(s []byte) (read, ref int) {
	for _, op := range s {
		if ConsumesRead(op) {
			read++
		}

		if ConsumesRef(op) {
			ref++
		}
	}

	return
}

// Number of operations that are not matches
func Errors(s []byte) (n int) {
	for _, op := range s {
		if op != Match {
			n++
		}
	}

	return
}

// Run-length encoded form of the operations, e.g. "10=1X2I5="
func String(s []byte) string {
	var sb strings.Builder

	for i := 0; i < len(s); {
		j := i + 1
		for j < len(s) && s[j] == s[i] {
			j++
		}

		sb.WriteString(strconv.Itoa(j - i))
		sb.WriteByte(s[i])
		i = j
	}

	return sb.String()
}
