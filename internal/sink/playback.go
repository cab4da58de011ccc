// SPDX-License-Identifier: MIT
package sink

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	applog "audiohub/internal/log"
)

// Playback plays enqueued samples on a PortAudio output device.
//
// Enqueue feeds an internal Ring; the PortAudio callback drains it at the
// device rate. When the ring runs dry the callback emits silence and counts
// an underrun. When the ring is full Enqueue reports 0 and the caller
// throttles, which is the natural pacing mechanism for file playback.
type Playback struct {
	ring     *Ring
	stream   *portaudio.Stream
	device   *portaudio.DeviceInfo
	latency  time.Duration
	channels int

	started   atomic.Bool
	underruns atomic.Int64
}

// PlaybackParams configures a playback sink.
type PlaybackParams struct {
	Device          *portaudio.DeviceInfo
	SampleRate      float64
	Channels        int
	FramesPerBuffer int
	LowLatency      bool
	QueueFrames     int // Ring depth in frames; rounded up to a power of 2
}

// NewPlayback creates a playback sink for the given output device.
// Start must be called before samples begin to play.
func NewPlayback(p PlaybackParams) (*Playback, error) {
	if p.Device == nil {
		return nil, fmt.Errorf("playback device cannot be nil")
	}
	if p.Channels <= 0 || p.Channels > p.Device.MaxOutputChannels {
		return nil, fmt.Errorf("invalid channel count %d for device %s", p.Channels, p.Device.Name)
	}
	if p.QueueFrames <= 0 {
		p.QueueFrames = 8 * p.FramesPerBuffer
	}

	pb := &Playback{
		ring:     NewRing(p.QueueFrames * p.Channels),
		device:   p.Device,
		channels: p.Channels,
	}

	if p.LowLatency {
		pb.latency = p.Device.DefaultLowOutputLatency
	} else {
		pb.latency = p.Device.DefaultHighOutputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 0, // No input device
			Device:   nil,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: p.Channels,
			Device:   p.Device,
			Latency:  pb.latency,
		},
		FramesPerBuffer: p.FramesPerBuffer,
		SampleRate:      p.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, pb.fillOutputStream)
	if err != nil {
		return nil, fmt.Errorf("failed to open playback stream: %w", err)
	}
	pb.stream = stream

	return pb, nil
}

// Start begins pulling samples from the ring into the device.
func (pb *Playback) Start() error {
	if !pb.started.CompareAndSwap(false, true) {
		return nil
	}
	if err := pb.stream.Start(); err != nil {
		pb.started.Store(false)
		return fmt.Errorf("failed to start playback stream: %w", err)
	}
	applog.Infof("Playback: stream started on %s (latency %s)", pb.device.Name, pb.latency)
	return nil
}

// fillOutputStream is the real-time output callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Ring dequeue only, no dynamic allocations
func (pb *Playback) fillOutputStream(out []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := pb.ring.Dequeue(out)
	if n < len(out) {
		// Underrun: pad the rest of the device buffer with silence.
		for i := n; i < len(out); i++ {
			out[i] = 0
		}
		pb.underruns.Add(1)
	}
}

// Enqueue offers samples to the playback queue. 0 means the queue is full.
func (pb *Playback) Enqueue(samples []int32) (int, error) {
	return pb.ring.Enqueue(samples)
}

// Buffered returns the number of samples waiting in the queue.
func (pb *Playback) Buffered() int {
	return pb.ring.Len()
}

// Underruns returns how often the callback ran out of samples.
func (pb *Playback) Underruns() int64 {
	return pb.underruns.Load()
}

// Drain blocks until the queue is empty or the timeout elapses.
// Useful at end of playback so the tail of the audio is not cut off.
func (pb *Playback) Drain(timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for pb.ring.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

// Close stops the stream and releases the device.
func (pb *Playback) Close() error {
	if err := pb.ring.Close(); err != nil {
		return err
	}

	if pb.started.CompareAndSwap(true, false) {
		if err := pb.stream.Stop(); err != nil {
			return fmt.Errorf("failed to stop playback stream: %w", err)
		}
	}
	if err := pb.stream.Close(); err != nil {
		return fmt.Errorf("failed to close playback stream: %w", err)
	}

	if u := pb.underruns.Load(); u > 0 {
		applog.Debugf("Playback: %d underruns during session", u)
	}
	return nil
}

var _ Sink = (*Playback)(nil)
