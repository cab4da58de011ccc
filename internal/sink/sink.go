// SPDX-License-Identifier: MIT
/*
Package sink provides the audio sink capability: destinations that accept
int32 PCM samples and report how many they took.

The Enqueue contract is uniform across implementations: the returned count
is the number of samples accepted, and 0 with a nil error means the
destination is full. Partial acceptance is legal; the remainder stays with
the caller. Enqueue never blocks.
*/
package sink

import "errors"

// ErrClosed is returned by Enqueue after a sink has been closed.
var ErrClosed = errors.New("sink is closed")

// Sink is a destination that consumes audio sample data.
type Sink interface {
	// Enqueue offers samples to the sink and returns the number accepted.
	// 0 with a nil error signals the destination is full.
	Enqueue(samples []int32) (int, error)

	// Close releases sink resources. Whoever created the sink closes it;
	// the hub holds sinks non-owning and never calls Close.
	Close() error
}
