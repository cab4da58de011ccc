// SPDX-License-Identifier: MIT
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"audiohub/internal/hub"
)

// Pump default pacing when the destination reports full.
const defaultBackoff = 5 * time.Millisecond

// PumpOptions tunes a pump run. Zero values select the defaults.
type PumpOptions struct {
	FramesPerBuffer int           // Samples read per iteration (default 512)
	Backoff         time.Duration // Wait before re-offering to a full sink
}

// Pump drains a source into the hub until the source is exhausted or the
// context is cancelled. Each chunk runs through the hub's chain exactly
// once; when the sink accepts only part of a chunk the remainder is
// re-offered after a backoff, bypassing the chain.
func Pump(ctx context.Context, src Source, h *hub.Hub, opts PumpOptions) error {
	if opts.FramesPerBuffer <= 0 {
		opts.FramesPerBuffer = 512
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}

	buf := make([]int32, opts.FramesPerBuffer)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := src.Read(buf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("source read failed: %w", err)
		}
		if n == 0 {
			continue
		}

		chunk := buf[:n]
		written, err := h.Write(chunk)
		if err != nil {
			return err
		}

		// Full sink is back-pressure: wait and re-offer the processed
		// remainder without re-running the chain.
		for written < len(chunk) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Backoff):
			}

			m, err := h.Enqueue(chunk[written:])
			if err != nil {
				return err
			}
			written += m
		}
	}
}
