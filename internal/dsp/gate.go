// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"sync/atomic"
)

// Gate is a noise gate: when the peak amplitude of a buffer stays at or
// below the threshold, the whole buffer is replaced with silence.
type Gate struct {
	name      string
	enabled   atomic.Bool
	threshold atomic.Int32 // Absolute amplitude threshold (0-2147483647)
}

// NewGate creates an enabled gate with the given threshold (0.0-1.0).
func NewGate(name string, threshold float64) *Gate {
	g := &Gate{name: name}
	g.enabled.Store(true)
	g.SetThreshold(threshold)
	return g
}

// Name implements Stage.
func (g *Gate) Name() string { return g.name }

// Enable opens the gate for processing.
func (g *Gate) Enable() { g.enabled.Store(true) }

// Disable turns the gate into a pass-through.
func (g *Gate) Disable() { g.enabled.Store(false) }

// Enabled reports whether the gate is active.
func (g *Gate) Enabled() bool { return g.enabled.Load() }

// SetThreshold adjusts the gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (g *Gate) SetThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	g.threshold.Store(int32(threshold * float64(math.MaxInt32)))
}

// Threshold returns the current threshold as a float64 in 0.0-1.0.
func (g *Gate) Threshold() float64 {
	return float64(g.threshold.Load()) / float64(math.MaxInt32)
}

// Process silences the buffer when its peak amplitude is below threshold.
// Performance Critical (Hot Path):
// - Branchless peak detection
// - No allocations
func (g *Gate) Process(buf []int32) {
	if !g.enabled.Load() {
		return
	}

	var maxAmplitude int32
	for i := range buf {
		sample := buf[i]

		// Absolute value without branching.
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask

		// Update max using math instead of branching.
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}

	if maxAmplitude <= g.threshold.Load() {
		for i := range buf {
			buf[i] = 0
		}
	}
}

var _ Stage = (*Gate)(nil)
