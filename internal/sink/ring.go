// SPDX-License-Identifier: MIT
package sink

import (
	"sync/atomic"

	"audiohub/pkg/bitint"
)

// Ring is a bounded single-producer single-consumer ring of int32 samples.
// It is the canonical "0 means full" sink: Enqueue takes as many samples as
// fit and returns the count, without blocking or allocating.
//
// Capacity is rounded up to a power of two so index wrapping is a mask
// instead of a modulo. Head and tail are free-running uint64 counters;
// only the producer advances tail and only the consumer advances head.
type Ring struct {
	buf  []int32
	mask uint64

	head atomic.Uint64 // consumer position
	tail atomic.Uint64 // producer position

	closed atomic.Bool
}

// NewRing creates a ring holding at least capacity samples.
func NewRing(capacity int) *Ring {
	n := bitint.NextPowerOfTwo(capacity)
	return &Ring{
		buf:  make([]int32, n),
		mask: uint64(n - 1),
	}
}

// Enqueue copies up to len(samples) into the ring. Producer side only.
func (r *Ring) Enqueue(samples []int32) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}

	head := r.head.Load()
	tail := r.tail.Load()

	free := uint64(len(r.buf)) - (tail - head)
	n := uint64(len(samples))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0, nil // Full
	}

	// Copy in at most two segments around the wrap point.
	start := tail & r.mask
	first := uint64(len(r.buf)) - start
	if first > n {
		first = n
	}
	copy(r.buf[start:start+first], samples[:first])
	copy(r.buf[:n-first], samples[first:n])

	r.tail.Store(tail + n)
	return int(n), nil
}

// Dequeue copies up to len(dst) samples out of the ring and returns the
// count. Consumer side only; used by the playback callback.
func (r *Ring) Dequeue(dst []int32) int {
	head := r.head.Load()
	tail := r.tail.Load()

	avail := tail - head
	n := uint64(len(dst))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	start := head & r.mask
	first := uint64(len(r.buf)) - start
	if first > n {
		first = n
	}
	copy(dst[:first], r.buf[start:start+first])
	copy(dst[first:n], r.buf[:n-first])

	r.head.Store(head + n)
	return int(n)
}

// Len returns the number of samples currently buffered.
func (r *Ring) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the ring capacity in samples.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Close marks the ring closed for the producer. Buffered samples remain
// readable by the consumer.
func (r *Ring) Close() error {
	r.closed.Store(true)
	return nil
}

var _ Sink = (*Ring)(nil)
