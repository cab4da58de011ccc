// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"

	"audiohub/internal/transport"
)

// Stage type names accepted in chain descriptors.
const (
	TypeGain     = "gain"
	TypeGate     = "gate"
	TypeAnalyzer = "analyzer"
)

// DefaultFFTSize is used when an analyzer descriptor omits fft_size.
const DefaultFFTSize = 1024

// StageConfig is a tagged stage descriptor. The Type field selects the
// stage; the remaining fields parameterize it.
type StageConfig struct {
	Type string `yaml:"type"`
	Name string `yaml:"name,omitempty"` // Defaults to Type

	// Gain parameters
	Factor float64 `yaml:"factor,omitempty"`

	// Gate parameters
	Threshold float64 `yaml:"threshold,omitempty"`

	// Analyzer parameters
	FFTSize     int    `yaml:"fft_size,omitempty"`
	Window      string `yaml:"window,omitempty"`
	WebSocket   string `yaml:"websocket,omitempty"`    // Spectrum push address, e.g. ":8080"
	LogSpectrum bool   `yaml:"log_spectrum,omitempty"` // Debug: log frames instead of serving them
}

// Build constructs a single stage from its descriptor.
func Build(cfg StageConfig, sampleRate float64) (Stage, error) {
	name := cfg.Name
	if name == "" {
		name = cfg.Type
	}

	switch cfg.Type {
	case TypeGain:
		factor := cfg.Factor
		if factor == 0 {
			factor = 1.0 // Omitted factor means unity, not silence
		}
		return NewGain(name, factor), nil

	case TypeGate:
		return NewGate(name, cfg.Threshold), nil

	case TypeAnalyzer:
		fftSize := cfg.FFTSize
		if fftSize == 0 {
			fftSize = DefaultFFTSize
		}
		windowType, err := ParseWindowFunc(cfg.Window)
		if err != nil {
			return nil, err
		}

		var tr transport.Transport
		switch {
		case cfg.WebSocket != "":
			tr = transport.NewWebSocket(cfg.WebSocket)
		case cfg.LogSpectrum:
			tr = transport.NewLogging()
		}
		return NewAnalyzer(name, fftSize, sampleRate, windowType, tr)

	default:
		return nil, fmt.Errorf("unknown stage type: '%s'", cfg.Type)
	}
}

// BuildChain constructs an ordered chain from descriptors. Stage names
// must be unique within a chain.
func BuildChain(cfgs []StageConfig, sampleRate float64) ([]Stage, error) {
	stages := make([]Stage, 0, len(cfgs))
	seen := make(map[string]bool, len(cfgs))

	for i, cfg := range cfgs {
		stage, err := Build(cfg, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("chain stage %d: %w", i, err)
		}
		if seen[stage.Name()] {
			return nil, fmt.Errorf("chain stage %d: duplicate stage name '%s'", i, stage.Name())
		}
		seen[stage.Name()] = true
		stages = append(stages, stage)
	}
	return stages, nil
}
