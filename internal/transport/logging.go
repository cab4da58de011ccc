// SPDX-License-Identifier: MIT
package transport

import applog "audiohub/internal/log"

// Logging is a Transport that logs payload types at debug level.
// It is the fallback when no network transport is configured.
type Logging struct{}

// NewLogging creates a Logging transport.
func NewLogging() *Logging {
	return &Logging{}
}

// Send logs the payload type; it never fails.
func (lt *Logging) Send(data any) error {
	applog.Debugf("Logging transport: received %T", data)
	return nil
}

// Close is a no-op.
func (lt *Logging) Close() error {
	return nil
}

var _ Transport = (*Logging)(nil)
