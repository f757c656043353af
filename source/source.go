// Package source implements a finite memory stochastic source: a discrete
// conditional distribution of the next symbol given (up to) the previous m
// symbols and the position in the sequence.
//
// The source is trained by counting examples (Update, LearnWord). The first
// time it is sampled (Generate, GenerateWord) the counts are normalized to
// probabilities and frozen: further updates are rejected.
package source

import (
	"errors"
	"math/rand"
	"sync"
)

var ErrSymbol = errors.New("symbol out of alphabet")
var ErrPosition = errors.New("invalid position")
var ErrFrozen = errors.New("source already normalized")

type Source struct {
	sync.Mutex

	m	int		// memory of the source
	sigma	int		// input alphabet size (including the start symbol)
	omega	int		// output alphabet size (including the end symbol)
	prefix	int		// number of possible contexts (sigma^m)
	graph	bool		// start and end symbols reserved
	term	bool		// LearnWord adds the end symbol

	raw	[][]uint64	// counts, one prefix*omega matrix per position
	norm	[][]float64	// probabilities, nil until normalized
}

// Creates an empty source with input alphabet of size sigma, output alphabet
// of size omega and memory m. If graph is true, both alphabets are extended
// by one symbol: the last input symbol marks an incomplete prefix (start of
// the sequence), the last output symbol marks the end of a word.
func New(sigma, omega, m int, graph bool) (s *Source) {
	s = new(Source)
	s.m = m
	s.graph = graph
	s.term = graph
	s.sigma = sigma
	s.omega = omega
	if graph {
		s.sigma++
		s.omega++
	}

	s.prefix = 1
	for i := 0; i < m; i++ {
		s.prefix *= s.sigma
	}

	return
}

// Memory (maximum context length) of the source
func (s *Source) Memory() int {
	return s.m
}

// Input alphabet size, including the reserved symbol
func (s *Source) Sigma() int {
	return s.sigma
}

// Output alphabet size, including the reserved symbol
func (s *Source) Omega() int {
	return s.omega
}

// Number of possible contexts
func (s *Source) Prefix() int {
	return s.prefix
}

func (s *Source) Graph() bool {
	return s.graph
}

// Number of positions with statistics
func (s *Source) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.raw)
}

// The end-of-word output symbol. Only meaningful if the source was created
// with graph set.
func (s *Source) End() byte {
	return byte(s.omega - 1)
}

// Enables or disables adding the end-of-word symbol in LearnWord. It is
// enabled by default for sources with reserved symbols. Has no effect on
// sources without them.
func (s *Source) SetTerminal(on bool) {
	s.Lock()
	s.term = on && s.graph
	s.Unlock()
}

// Computes the index of the context. Contexts longer than the memory are
// truncated to the last m symbols, shorter ones are padded on the left
// with the reserved (last) input symbol.
// Returns -1 if a symbol is out of the alphabet.
func (s *Source) index(ctx []byte) int {
	if len(ctx) > s.m {
		ctx = ctx[len(ctx)-s.m:]
	}

	idx := 0
	pow := 1
	for i := len(ctx) - 1; i >= 0; i-- {
		c := int(ctx[i])
		if c >= s.sigma {
			return -1
		}

		idx += c * pow
		pow *= s.sigma
	}

	for i := len(ctx); i < s.m; i++ {
		idx += (s.sigma - 1) * pow
		pow *= s.sigma
	}

	return idx
}

// Adds empty matrices up to (including) position pos.
func (s *Source) grow(pos int) {
	for len(s.raw) <= pos {
		s.raw = append(s.raw, make([]uint64, s.prefix*s.omega))
	}
}

func (s *Source) update(ctx []byte, pos int, out byte) error {
	if s.norm != nil {
		return ErrFrozen
	}

	if pos < 0 {
		return ErrPosition
	}

	idx := s.index(ctx)
	if idx < 0 || int(out) >= s.omega {
		return ErrSymbol
	}

	s.grow(pos)
	s.raw[pos][idx*s.omega + int(out)]++
	return nil
}

// Counts one occurence of symbol out after context ctx at position pos.
func (s *Source) Update(ctx []byte, pos int, out byte) error {
	s.Lock()
	defer s.Unlock()
	return s.update(ctx, pos, out)
}

// Learns a word: for each position i the symbol w[i] is counted with the
// preceding (up to m) symbols as context. If enabled, the end-of-word
// symbol is counted at position len(w).
func (s *Source) LearnWord(w []byte) (err error) {
	s.Lock()
	defer s.Unlock()

	i := 0
	for ; i < len(w); i++ {
		l := i
		if l > s.m {
			l = s.m
		}

		if err = s.update(w[i-l:i], i, w[i]); err != nil {
			return
		}
	}

	if s.term {
		l := i
		if l > s.m {
			l = s.m
		}

		err = s.update(w[i-l:i], i, s.End())
	}

	return
}

// Returns the number of times out was seen after context ctx at position
// pos.
func (s *Source) Count(ctx []byte, pos int, out byte) uint64 {
	s.Lock()
	defer s.Unlock()

	idx := s.index(ctx)
	if pos < 0 || pos >= len(s.raw) || idx < 0 || int(out) >= s.omega {
		return 0
	}

	return s.raw[pos][idx*s.omega + int(out)]
}

func (s *Source) normalize() {
	if s.norm != nil {
		return
	}

	s.norm = make([][]float64, len(s.raw))
	for i, raw := range s.raw {
		norm := make([]float64, len(raw))
		for j := 0; j < s.prefix; j++ {
			row := raw[j*s.omega : (j+1)*s.omega]

			var sum uint64
			for _, v := range row {
				sum += v
			}

			if sum == 0 {
				continue
			}

			for k, v := range row {
				norm[j*s.omega + k] = float64(v) / float64(sum)
			}
		}

		s.norm[i] = norm
	}
}

// Converts the counts to probabilities. After that the source can't be
// updated anymore. Calling it more than once has no effect.
func (s *Source) Normalize() {
	s.Lock()
	s.normalize()
	s.Unlock()
}

// Returns the probability of out following ctx at position pos.
// Normalizes the source if it isn't already.
func (s *Source) Prob(ctx []byte, pos int, out byte) float64 {
	s.Lock()
	defer s.Unlock()

	s.normalize()
	idx := s.index(ctx)
	if pos < 0 || pos >= len(s.norm) || idx < 0 || int(out) >= s.omega {
		return 0
	}

	return s.norm[pos][idx*s.omega + int(out)]
}

func (s *Source) generate(rnd *rand.Rand, ctx []byte, pos int) byte {
	s.normalize()
	if len(s.norm) == 0 {
		return 0
	}

	// positions beyond what was learned use the last statistics
	if pos >= len(s.norm) {
		pos = len(s.norm) - 1
	} else if pos < 0 {
		pos = 0
	}

	idx := s.index(ctx)
	if idx < 0 {
		return 0
	}

	p := s.norm[pos][idx*s.omega : (idx+1)*s.omega]
	outcome := rnd.Float64()
	threshold := 0.0
	last := -1
	for i, v := range p {
		if v == 0 {
			continue
		}

		if threshold <= outcome && outcome < threshold+v {
			return byte(i)
		}

		threshold += v
		last = i
	}

	// rounding errors can leave a gap just below 1
	if last >= 0 {
		return byte(last)
	}

	// nothing was learned for this context
	return 0
}

// Draws the next symbol given the context and the position.
// If the context was never seen, returns 0.
func (s *Source) Generate(rnd *rand.Rand, ctx []byte, pos int) byte {
	s.Lock()
	defer s.Unlock()
	return s.generate(rnd, ctx, pos)
}

// Generates a word using the previously generated symbols as context.
// The word is at most Len() symbols long, and ends early if the end-of-word
// symbol is generated (the symbol is included in the returned word).
// The generated word is appended to w[:0].
func (s *Source) GenerateWord(rnd *rand.Rand, w []byte) []byte {
	s.Lock()
	defer s.Unlock()

	w = w[:0]
	n := len(s.raw)
	for i := 0; i < n; i++ {
		l := i
		if l > s.m {
			l = s.m
		}

		c := s.generate(rnd, w[i-l:i], i)
		w = append(w, c)
		if s.graph && c == s.End() {
			break
		}
	}

	return w
}
