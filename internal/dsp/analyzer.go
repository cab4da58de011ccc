// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"audiohub/internal/transport"
	"audiohub/pkg/bitint"
)

// WindowFunc selects an FFT window function.
type WindowFunc int

// Enum for available window functions.
const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

// analyzerWorkspace holds pre-allocated buffers for FFT calculations.
type analyzerWorkspace struct {
	input     []float64    // Windowed, normalized input samples
	fftOutput []complex128 // FFT complex results
	magnitude []float64    // Calculated magnitudes
	window    []float64    // Pre-calculated window coefficients
	mu        sync.RWMutex // Protects the magnitude buffer
}

// Analyzer is a pass-through stage that performs windowed FFT magnitude
// analysis on the buffers flowing through the chain. Audio is never
// modified; results go out through a Transport and are readable via
// Magnitudes for pull-style consumers.
type Analyzer struct {
	name          string
	fftCalculator *fourier.FFT // Reusable FFT calculator instance
	fftSize       int          // Number of points (power of 2)
	sampleRate    float64      // Input sample rate in Hz
	workspace     analyzerWorkspace
	transport     transport.Transport // May be nil: analysis stays pull-only
}

// NewAnalyzer creates an analyzer stage. fftSize must be a power of 2;
// tr may be nil when no consumer wants pushed frames.
func NewAnalyzer(name string, fftSize int, sampleRate float64, windowType WindowFunc, tr transport.Transport) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	windowCoeffs := make([]float64, fftSize)
	applyWindow(windowCoeffs, windowType)

	// FFT output size for real input is N/2 + 1 complex values.
	magnitudeSize := fftSize/2 + 1

	return &Analyzer{
		name:          name,
		fftCalculator: fourier.NewFFT(fftSize),
		fftSize:       fftSize,
		sampleRate:    sampleRate,
		transport:     tr,
		workspace: analyzerWorkspace{
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, magnitudeSize),
			magnitude: make([]float64, magnitudeSize),
			window:    windowCoeffs,
		},
	}, nil
}

// Name implements Stage.
func (a *Analyzer) Name() string { return a.name }

// Process applies windowing, performs the FFT and records magnitudes.
// The audio buffer itself is left untouched.
func (a *Analyzer) Process(buf []int32) {
	a.workspace.mu.Lock()

	// Window and normalize input; zero-pad when the buffer is shorter
	// than the FFT size.
	const normFactor = 1.0 / float64(0x80000000)
	inputLen := len(buf)
	for i := 0; i < a.fftSize; i++ {
		if i < inputLen {
			a.workspace.input[i] = float64(buf[i]) * normFactor * a.workspace.window[i]
		} else {
			a.workspace.input[i] = 0
		}
	}

	a.fftCalculator.Coefficients(a.workspace.fftOutput, a.workspace.input)

	for i, c := range a.workspace.fftOutput {
		a.workspace.magnitude[i] = cmplx.Abs(c)
	}

	a.workspace.mu.Unlock()

	if a.transport != nil {
		_ = a.transport.Send(a.Magnitudes())
	}
}

// Magnitudes returns a thread-safe copy of the latest magnitude spectrum.
// For readers wanting to avoid the allocation, use MagnitudesInto.
func (a *Analyzer) Magnitudes() []float64 {
	a.workspace.mu.RLock()
	defer a.workspace.mu.RUnlock()

	magCopy := make([]float64, len(a.workspace.magnitude))
	copy(magCopy, a.workspace.magnitude)
	return magCopy
}

// MagnitudesInto copies the latest magnitudes into dest, which must have
// length fftSize/2 + 1.
func (a *Analyzer) MagnitudesInto(dest []float64) error {
	a.workspace.mu.RLock()
	defer a.workspace.mu.RUnlock()

	if len(dest) != len(a.workspace.magnitude) {
		return fmt.Errorf("destination slice length %d does not match required length %d", len(dest), len(a.workspace.magnitude))
	}
	copy(dest, a.workspace.magnitude)
	return nil
}

// FrequencyForBin returns the center frequency (Hz) for an FFT bin index.
func (a *Analyzer) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= len(a.workspace.fftOutput) {
		return 0.0
	}
	return float64(binIndex) * (a.sampleRate / float64(a.fftSize))
}

// FFTSize returns the configured FFT size. Immutable after creation.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// SampleRate returns the configured sample rate. Immutable after creation.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// Close shuts down the attached transport, if any.
func (a *Analyzer) Close() error {
	if a.transport != nil {
		return a.transport.Close()
	}
	return nil
}

var _ Stage = (*Analyzer)(nil)
var _ ClosableStage = (*Analyzer)(nil)

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Returns Hann and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the selected window function.
// Unknown types fall back to Hann.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	// Window funcs multiply in place, so seed with unity.
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		window.Hann(coeffs)
	}
}
