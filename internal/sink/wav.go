// SPDX-License-Identifier: MIT
package sink

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVWriter writes enqueued samples to a WAV file. A file never reports
// full, so Enqueue always accepts the whole buffer or fails with an error.
type WAVWriter struct {
	isOpen int32 // Atomic flag for thread-safe state

	file    *os.File
	encoder *wav.Encoder

	sampleRate int
	channels   int
	sampleBuf  *audio.IntBuffer // Reusable buffer for format conversion
}

// NewWAVWriter creates the output file and a 32-bit PCM encoder for it.
func NewWAVWriter(filename string, sampleRate, channels int) (*WAVWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("channel count must be positive, got %d", channels)
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := &WAVWriter{
		file:       file,
		encoder:    wav.NewEncoder(file, sampleRate, 32, channels, 1),
		sampleRate: sampleRate,
		channels:   channels,
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
		},
	}
	atomic.StoreInt32(&w.isOpen, 1)

	return w, nil
}

// Enqueue converts the samples and writes them through the WAV encoder.
func (w *WAVWriter) Enqueue(samples []int32) (int, error) {
	if atomic.LoadInt32(&w.isOpen) == 0 {
		return 0, ErrClosed
	}
	if len(samples) == 0 {
		return 0, nil
	}

	if cap(w.sampleBuf.Data) < len(samples) {
		w.sampleBuf.Data = make([]int, len(samples))
	}
	w.sampleBuf.Data = w.sampleBuf.Data[:len(samples)]
	for i, sample := range samples {
		w.sampleBuf.Data[i] = int(sample)
	}

	if err := w.encoder.Write(w.sampleBuf); err != nil {
		return 0, fmt.Errorf("failed to write WAV data: %w", err)
	}
	return len(samples), nil
}

// Close finalizes the WAV header and closes the file.
func (w *WAVWriter) Close() error {
	if !atomic.CompareAndSwapInt32(&w.isOpen, 1, 0) {
		return nil // Already closed
	}

	if err := w.encoder.Close(); err != nil {
		return err
	}
	return w.file.Close()
}

var _ Sink = (*WAVWriter)(nil)
