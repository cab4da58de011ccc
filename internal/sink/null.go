// SPDX-License-Identifier: MIT
package sink

import "sync/atomic"

// Null accepts and discards every sample. It is used as a diagnostic
// destination and as a stand-in sink in tests.
type Null struct {
	accepted atomic.Int64
	closed   atomic.Bool
}

// NewNull creates a Null sink.
func NewNull() *Null {
	return &Null{}
}

// Enqueue discards the samples and reports them all accepted.
func (n *Null) Enqueue(samples []int32) (int, error) {
	if n.closed.Load() {
		return 0, ErrClosed
	}
	n.accepted.Add(int64(len(samples)))
	return len(samples), nil
}

// Accepted returns the total number of samples discarded so far.
func (n *Null) Accepted() int64 {
	return n.accepted.Load()
}

// Close marks the sink closed; further Enqueue calls fail.
func (n *Null) Close() error {
	n.closed.Store(true)
	return nil
}

var _ Sink = (*Null)(nil)
