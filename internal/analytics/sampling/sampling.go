// Package sampling provides the injectable value sources behind the demand
// estimator's external factor and the maintenance alert confidence.
package sampling

import (
	"math/rand/v2"
	"sync"

	"backflow_portal_backend/platform/config"
)

// Source yields values in [0, 1).
type Source interface {
	Float64() float64
}

// Neutral always yields 0.5, placing every Uniform draw at the midpoint of its range.
type Neutral struct{}

// Float64 implements Source.
func (Neutral) Float64() float64 { return 0.5 }

// Random is a seeded PRNG safe for concurrent use.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a PRNG source. Equal seeds produce equal sequences.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 implements Source.
func (r *Random) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Fixed yields the same value on every call. Values outside [0, 1) are clamped.
type Fixed float64

// Float64 implements Source.
func (f Fixed) Float64() float64 {
	switch {
	case f < 0:
		return 0
	case f >= 1:
		return 0.999999
	default:
		return float64(f)
	}
}

// Uniform maps a draw from src onto [lo, hi) centered on the range midpoint.
func Uniform(src Source, lo, hi float64) float64 {
	mid := (lo + hi) / 2
	return mid + (src.Float64()-0.5)*(hi-lo)
}

// FromMode builds the source selected by ANALYTICS_FACTOR_MODE.
func FromMode(mode string, seed int64) Source {
	if mode == config.FactorModeNeutral {
		return Neutral{}
	}
	return NewRandom(uint64(seed))
}
