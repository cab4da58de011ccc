// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestGainFactorBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-1.0, 0.0}, // Below min
		{0.0, 0.0},  // Minimum
		{0.5, 0.5},
		{1.0, 1.0},
		{4.0, 4.0}, // Maximum
		{9.0, 4.0}, // Above max
	}

	gain := NewGain("gain", 1.0)

	for _, tt := range tests {
		t.Run(formatFloat(tt.input), func(t *testing.T) {
			gain.SetFactor(tt.input)
			got := gain.Factor()

			if absFloat(got-tt.expected) > 0.001 {
				t.Errorf("Gain factor conversion: got %.3f, want %.3f", got, tt.expected)
			}
		})
	}
}

func TestGainScaling(t *testing.T) {
	tests := []struct {
		desc     string
		factor   float64
		input    int32
		expected int32
	}{
		{"Unity", 1.0, 1000000, 1000000},
		{"Half", 0.5, 1000000, 500000},
		{"Double", 2.0, 1000000, 2000000},
		{"Mute", 0.0, 1000000, 0},
		{"Negative sample", 0.5, -1000000, -500000},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			gain := NewGain("gain", tt.factor)
			buf := []int32{tt.input}
			gain.Process(buf)

			// Q16 arithmetic may be off by one count.
			diff := buf[0] - tt.expected
			if diff < -1 || diff > 1 {
				t.Errorf("Scaled sample = %d, want %d", buf[0], tt.expected)
			}
		})
	}
}

func TestGainClipsAtFullScale(t *testing.T) {
	gain := NewGain("gain", 4.0)
	buf := []int32{math.MaxInt32, math.MinInt32}

	gain.Process(buf)

	if buf[0] != math.MaxInt32 {
		t.Errorf("Positive clip = %d, want %d", buf[0], int32(math.MaxInt32))
	}
	if buf[1] != math.MinInt32 {
		t.Errorf("Negative clip = %d, want %d", buf[1], int32(math.MinInt32))
	}
}

func TestGainUnityIsPassThrough(t *testing.T) {
	gain := NewGain("gain", 1.0)
	buf := loudBuffer()
	want := make([]int32, len(buf))
	copy(want, buf)

	gain.Process(buf)

	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("Sample %d modified at unity gain: got %d, want %d", i, buf[i], want[i])
		}
	}
}

func TestGainProcessZeroAllocsHotPath(t *testing.T) {
	gain := NewGain("gain", 0.8)
	buf := loudBuffer()

	allocs := testing.AllocsPerRun(100, func() {
		gain.Process(buf)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in gain hot path, got %.1f", allocs)
	}
}

func BenchmarkGainProcessHotPath(b *testing.B) {
	gain := NewGain("gain", 0.8)
	buf := loudBuffer()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		gain.Process(buf)
	}
}
