// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"sync/atomic"
)

// gainShift is the fixed-point fraction width for the gain multiplier.
const gainShift = 16

// Gain scales every sample by a factor in [0.0, 4.0], clamping to the
// int32 range. The factor is stored as a Q16 fixed-point multiplier so the
// hot path stays in integer math.
type Gain struct {
	name       string
	multiplier atomic.Int64 // Q16 fixed point
}

// NewGain creates a gain stage with the given initial factor.
func NewGain(name string, factor float64) *Gain {
	g := &Gain{name: name}
	g.SetFactor(factor)
	return g
}

// Name implements Stage.
func (g *Gain) Name() string { return g.name }

// SetFactor adjusts the gain factor, clamped to [0.0, 4.0].
func (g *Gain) SetFactor(factor float64) {
	if factor < 0.0 {
		factor = 0.0
	}
	if factor > 4.0 {
		factor = 4.0
	}
	g.multiplier.Store(int64(factor * (1 << gainShift)))
}

// Factor returns the current gain factor.
func (g *Gain) Factor() float64 {
	return float64(g.multiplier.Load()) / (1 << gainShift)
}

// Process scales the buffer in place.
// Performance Critical (Hot Path):
// - Integer multiply and shift only
// - Branchless except for the clip clamp
func (g *Gain) Process(buf []int32) {
	m := g.multiplier.Load()
	if m == 1<<gainShift {
		return // Unity gain
	}

	for i := range buf {
		scaled := (int64(buf[i]) * m) >> gainShift
		if scaled > math.MaxInt32 {
			scaled = math.MaxInt32
		}
		if scaled < math.MinInt32 {
			scaled = math.MinInt32
		}
		buf[i] = int32(scaled)
	}
}

var _ Stage = (*Gain)(nil)
