// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"audiohub/internal/hub"
	applog "audiohub/internal/log"
)

// Capture feeds live input from a PortAudio device into a hub. Unlike
// file sources it is push-driven: the device callback writes each buffer
// into the hub directly, so Capture does not implement Source.
type Capture struct {
	hub     *hub.Hub
	stream  *portaudio.Stream
	device  *portaudio.DeviceInfo
	latency time.Duration

	inputBuffer []int32 // Pre-allocated, reused by every callback

	started     atomic.Bool
	writeErrors atomic.Int64
	dropped     atomic.Int64
}

// CaptureParams configures a capture session.
type CaptureParams struct {
	Device          *portaudio.DeviceInfo
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	LowLatency      bool
}

// NewCapture opens an input stream on the given device. Start must be
// called before samples begin to flow.
func NewCapture(h *hub.Hub, p CaptureParams) (*Capture, error) {
	if h == nil {
		return nil, fmt.Errorf("capture hub cannot be nil")
	}
	if p.Device == nil {
		return nil, fmt.Errorf("capture device cannot be nil")
	}
	if p.Channels <= 0 || p.Channels > p.Device.MaxInputChannels {
		return nil, fmt.Errorf("invalid channel count %d for device %s", p.Channels, p.Device.Name)
	}

	c := &Capture{
		hub:         h,
		device:      p.Device,
		inputBuffer: make([]int32, p.FramesPerBuffer*p.Channels),
	}

	if p.LowLatency {
		c.latency = p.Device.DefaultLowInputLatency
	} else {
		c.latency = p.Device.DefaultHighInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: p.Channels,
			Device:   p.Device,
			Latency:  c.latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: p.FramesPerBuffer,
		SampleRate:      p.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, c.processInputStream)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}
	c.stream = stream

	return c, nil
}

// Start begins pushing captured buffers into the hub.
func (c *Capture) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.stream.Start(); err != nil {
		c.started.Store(false)
		return fmt.Errorf("failed to start capture stream: %w", err)
	}
	applog.Infof("Capture: stream started on %s (latency %s)", c.device.Name, c.latency)
	return nil
}

// processInputStream is the real-time input callback. Live capture
// cannot wait on a full sink, so the unaccepted remainder of a buffer
// is lost and counted.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses the pre-allocated buffer only, no logging
func (c *Capture) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(c.inputBuffer, in)
	n, err := c.hub.Write(c.inputBuffer)
	if err != nil {
		c.writeErrors.Add(1)
		return
	}
	if n < len(c.inputBuffer) {
		c.dropped.Add(int64(len(c.inputBuffer) - n))
	}
}

// WriteErrors returns how many buffers the hub rejected with an error.
func (c *Capture) WriteErrors() int64 {
	return c.writeErrors.Load()
}

// Dropped returns how many captured samples were lost to a full sink.
func (c *Capture) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops the stream and releases the device.
func (c *Capture) Close() error {
	if c.started.CompareAndSwap(true, false) {
		if err := c.stream.Stop(); err != nil {
			return fmt.Errorf("failed to stop capture stream: %w", err)
		}
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("failed to close capture stream: %w", err)
	}

	if n := c.writeErrors.Load(); n > 0 {
		applog.Debugf("Capture: %d buffers rejected during session", n)
	}
	if n := c.dropped.Load(); n > 0 {
		applog.Debugf("Capture: %d samples dropped during session", n)
	}
	return nil
}
