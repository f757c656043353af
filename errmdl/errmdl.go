// Package errmdl defines the interface implemented by the sequencer error
// models and the read they produce.
package errmdl

import (
	"math/rand"
)

// A read produced by an error model from a reference window.
type Read struct {
	Seq	[]byte	// read nucleotides
	Qual	[]byte	// raw (0-based) qualities, one per nucleotide
	Ops	[]byte	// edit operations of the read against the window
	Cut	bool	// the window ended before the read was complete
}

type Generator interface {
	// Generate one read starting at the beginning of the reference
	// window. If the window is exhausted before the read is complete,
	// the read is truncated and Cut is set.
	GenerateRead(rnd *rand.Rand, window []byte) *Read

	// Maximum length of the generated reads
	ReadLen() int
}
