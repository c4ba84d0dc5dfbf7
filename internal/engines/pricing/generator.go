package pricing

import (
	"math"
	"math/rand"

	"github.com/vivekxkt/trading-app/internal/models"
)

const (
	// Volatility bounds the random shock applied on every tick.
	Volatility = 0.00015
	// DriftStep bounds the per-tick random walk of the drift rate.
	DriftStep = 0.00001
	// DriftLimit clamps the drift rate on both sides.
	DriftLimit = 0.00025
)

// Generator produces the next simulated price for an instrument. A
// generator is deterministic for a given seed, so a recorded session can
// be replayed tick for tick.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// NextPrice advances a price by one tick: a small percentage move made of
// the instrument's drift rate plus a uniform shock in
// [-Volatility/2, +Volatility/2), rounded to two decimals. A NaN or
// infinite previous price collapses to zero instead of propagating.
func (g *Generator) NextPrice(previous, drift float64) float64 {
	if math.IsNaN(previous) || math.IsInf(previous, 0) {
		return 0
	}
	shock := (g.rng.Float64() - 0.5) * Volatility
	return models.Round2(previous * (1 + drift + shock))
}

// NextDrift nudges the drift rate by a uniform step in
// [-DriftStep, +DriftStep) and clamps it to [-DriftLimit, +DriftLimit].
// Callers advance the drift once per tick so trends persist for a while
// before reversing.
func (g *Generator) NextDrift(drift float64) float64 {
	next := drift + (g.rng.Float64()-0.5)*2*DriftStep
	if next > DriftLimit {
		return DriftLimit
	}
	if next < -DriftLimit {
		return -DriftLimit
	}
	return next
}
