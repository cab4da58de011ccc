// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVFile streams samples from a WAV file. Samples of any source bit
// depth are rescaled to full 32-bit range so downstream stages see a
// uniform format.
type WAVFile struct {
	file    *os.File
	decoder *wav.Decoder
	pcmBuf  *audio.IntBuffer // Reusable decode buffer
	shift   uint             // Left shift to bring samples to 32-bit
	eof     bool
}

// OpenWAV opens the file and validates its header.
func OpenWAV(path string) (*WAVFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 || bitDepth > 32 {
		file.Close()
		return nil, fmt.Errorf("unsupported bit depth %d in %s", bitDepth, path)
	}

	return &WAVFile{
		file:    file,
		decoder: decoder,
		shift:   uint(32 - bitDepth),
		pcmBuf: &audio.IntBuffer{
			Format: decoder.Format(),
		},
	}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (w *WAVFile) SampleRate() int {
	return int(w.decoder.SampleRate)
}

// Channels returns the file's channel count.
func (w *WAVFile) Channels() int {
	return int(w.decoder.NumChans)
}

// Duration returns the total playing time of the file.
func (w *WAVFile) Duration() (float64, error) {
	d, err := w.decoder.Duration()
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}

// Read decodes the next chunk into buf, rescaled to 32-bit.
func (w *WAVFile) Read(buf []int32) (int, error) {
	if w.eof {
		return 0, io.EOF
	}
	if len(buf) == 0 {
		return 0, nil
	}

	if cap(w.pcmBuf.Data) < len(buf) {
		w.pcmBuf.Data = make([]int, len(buf))
	}
	w.pcmBuf.Data = w.pcmBuf.Data[:len(buf)]

	n, err := w.decoder.PCMBuffer(w.pcmBuf)
	if err != nil {
		return 0, fmt.Errorf("wav decode failed: %w", err)
	}
	if n == 0 {
		w.eof = true
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		buf[i] = int32(w.pcmBuf.Data[i]) << w.shift
	}
	return n, nil
}

// Close releases the underlying file.
func (w *WAVFile) Close() error {
	return w.file.Close()
}

var _ Source = (*WAVFile)(nil)
