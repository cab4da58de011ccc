// SPDX-License-Identifier: MIT
/*
Package hub routes audio through an ordered DSP chain into the active sink.

The hub owns its chain: closable stages are shut down by Close. The sink
is different: the hub holds a replaceable, non-owning reference and never
closes a sink it was handed. Whoever created the sink manages its lifetime.

Thread Safety:
- Write is single-producer
- Chain and sink references are swapped atomically and may be replaced
  while Write is running; the swap affects the next Write, never an
  in-flight one
- Counters use atomics, no locks on the sample path
*/
package hub

import (
	"fmt"
	"sync/atomic"

	"audiohub/internal/dsp"
	applog "audiohub/internal/log"
	"audiohub/internal/sink"
)

// Hub coordinates the DSP chain and the active sink.
type Hub struct {
	chain      atomic.Pointer[[]dsp.Stage]
	activeSink atomic.Pointer[sink.Sink]

	// Routing counters.
	buffersIn atomic.Int64 // Buffers offered to Write
	delivered atomic.Int64 // Samples accepted by the sink
	dropped   atomic.Int64 // Samples discarded (no sink, or sink error)
}

// Stats is a snapshot of the hub's routing counters.
type Stats struct {
	BuffersIn int64
	Delivered int64
	Dropped   int64
}

// New creates a hub with the given initial chain and no sink attached.
func New(stages ...dsp.Stage) *Hub {
	h := &Hub{}
	h.chain.Store(&stages)
	return h
}

// SetSink replaces the active sink reference. Nil detaches the current
// sink. The hub does not close the previous sink; it does not own it.
func (h *Hub) SetSink(s sink.Sink) {
	if s == nil {
		h.activeSink.Store(nil)
		applog.Debug("Hub: sink detached")
		return
	}
	h.activeSink.Store(&s)
	applog.Debugf("Hub: sink set to %T", s)
}

// Sink returns the currently active sink, or nil when detached.
func (h *Hub) Sink() sink.Sink {
	p := h.activeSink.Load()
	if p == nil {
		return nil
	}
	return *p
}

// SetChain replaces the whole DSP chain. Stage names must be unique.
func (h *Hub) SetChain(stages ...dsp.Stage) error {
	seen := make(map[string]bool, len(stages))
	for _, s := range stages {
		if seen[s.Name()] {
			return fmt.Errorf("duplicate stage name '%s'", s.Name())
		}
		seen[s.Name()] = true
	}

	h.chain.Store(&stages)
	applog.Debugf("Hub: chain replaced (%d stages)", len(stages))
	return nil
}

// Chain returns the ordered names of the current DSP chain.
func (h *Hub) Chain() []string {
	stages := *h.chain.Load()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return names
}

// PushStage appends a stage to the end of the chain.
func (h *Hub) PushStage(s dsp.Stage) error {
	current := *h.chain.Load()
	for _, existing := range current {
		if existing.Name() == s.Name() {
			return fmt.Errorf("duplicate stage name '%s'", s.Name())
		}
	}

	next := make([]dsp.Stage, len(current)+1)
	copy(next, current)
	next[len(current)] = s
	h.chain.Store(&next)
	return nil
}

// RemoveStage removes the named stage from the chain and reports whether
// it was present. The removed stage is not closed; it may be re-inserted.
func (h *Hub) RemoveStage(name string) bool {
	current := *h.chain.Load()
	next := make([]dsp.Stage, 0, len(current))
	found := false
	for _, s := range current {
		if s.Name() == name {
			found = true
			continue
		}
		next = append(next, s)
	}
	if found {
		h.chain.Store(&next)
	}
	return found
}

// Write runs the buffer through every stage in order, in place, then
// offers it to the active sink. After a partial acceptance the remainder
// is re-offered until the sink reports full; the chain runs exactly once
// per buffer, before any enqueue attempt.
//
// Returns the number of samples the sink accepted. With no sink attached
// the processed buffer is discarded, counted as dropped, and reported as
// fully consumed so producers do not spin on retries.
func (h *Hub) Write(samples []int32) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	h.buffersIn.Add(1)

	for _, stage := range *h.chain.Load() {
		stage.Process(samples)
	}

	return h.Enqueue(samples)
}

// Enqueue offers already-processed samples to the active sink without
// running the chain. Callers use it to re-offer the remainder of a
// partially accepted buffer; Write has processed those samples once and
// they must not pass through the chain again.
func (h *Hub) Enqueue(samples []int32) (int, error) {
	s := h.Sink()
	if s == nil {
		h.dropped.Add(int64(len(samples)))
		return len(samples), nil
	}

	total := 0
	for total < len(samples) {
		n, err := s.Enqueue(samples[total:])
		if err != nil {
			h.dropped.Add(int64(len(samples) - total))
			h.delivered.Add(int64(total))
			return total, fmt.Errorf("sink enqueue failed: %w", err)
		}
		if n == 0 {
			break // Destination full; remainder stays with the caller
		}
		total += n
	}

	h.delivered.Add(int64(total))
	return total, nil
}

// Stats returns a snapshot of the routing counters.
func (h *Hub) Stats() Stats {
	return Stats{
		BuffersIn: h.buffersIn.Load(),
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
	}
}

// Close shuts down closable stages in the chain. The active sink is left
// untouched: the hub does not own it.
func (h *Hub) Close() error {
	var firstErr error
	for _, stage := range *h.chain.Load() {
		if c, ok := stage.(dsp.ClosableStage); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
