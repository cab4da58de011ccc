// SPDX-License-Identifier: MIT
//
// Package transport carries analysis results (spectrum frames) out of the
// DSP chain to external consumers.
package transport

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe and must not block the caller: a
// transport that cannot keep up drops data rather than stalling the chain.
type Transport interface {
	Send(data any) error
	Close() error
}
