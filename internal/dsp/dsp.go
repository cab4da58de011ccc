// SPDX-License-Identifier: MIT
/*
Package dsp implements the processing stages that form the hub's chain.

A stage transforms (or taps) an int32 PCM buffer in place. Process runs
inside the playback hot path, so implementations must be efficient:
pre-allocated buffers, no locks on the sample path, no dynamic allocations.
*/
package dsp

// Stage is a named processing step in a DSP chain.
type Stage interface {
	// Name identifies the stage within a chain.
	Name() string

	// Process transforms the buffer in place. It must be efficient as it
	// is called from within the playback hot path.
	Process(buf []int32)
}

// ClosableStage combines Stage with a Close method for resource cleanup.
// Stages holding transports or files implement it; the hub owns its chain
// and closes closable stages on shutdown.
type ClosableStage interface {
	Stage
	Close() error
}
