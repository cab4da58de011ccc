// Package utils holds shared test helpers: signal generators, spectrum
// inspection and capture doubles for the transport and sink interfaces.
package utils

import "math"

// MockTransport implements the transport interface for testing.
// It stores the last magnitude payload instead of transmitting it.
type MockTransport struct {
	LastData []float64
	Sent     int
}

// Send stores the data for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	if magnitudes, ok := data.([]float64); ok {
		m.LastData = make([]float64, len(magnitudes))
		copy(m.LastData, magnitudes)
	}
	m.Sent++
	return nil
}

// Close is a no-op on the mock.
func (m *MockTransport) Close() error { return nil }

// GenerateSineWave returns a pure tone at the given frequency, scaled to
// 90% of the int32 range.
func GenerateSineWave(size int, sampleRate, frequency float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int32(math.Sin(2*math.Pi*frequency*t) * math.MaxInt32 * 0.9)
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental with two harmonics.
func GenerateComplexWave(size int, sampleRate float64) []int32 {
	buffer := make([]int32, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
		buffer[i] = int32(signal * math.MaxInt32 * 0.9)
	}
	return buffer
}

// FindPeakBin returns the index of the strongest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}
