package rally

import "math/rand"

// RandomSource supplies uniform draws in [0, 1).
type RandomSource interface {
	Float64() float64
}

// SystemSource draws from the runtime's per-goroutine generator. Safe for
// concurrent use, not reproducible.
type SystemSource struct{}

func NewSystemSource() SystemSource { return SystemSource{} }

func (SystemSource) Float64() float64 { return rand.Float64() }

// SeededSource is a 64-bit linear congruential generator (Knuth's MMIX
// constants). Same seed, same sequence. Must not be shared between matches
// running concurrently.
type SeededSource struct {
	state uint64
}

const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{state: seed}
}

func (s *SeededSource) Next() uint64 {
	s.state = s.state*lcgMultiplier + lcgIncrement
	return s.state
}

// Float64 uses the top 53 bits; the low bits of an LCG are weak.
func (s *SeededSource) Float64() float64 {
	return float64(s.Next()>>11) / (1 << 53)
}
