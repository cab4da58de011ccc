// SPDX-License-Identifier: MIT
/*
Package source produces the sample buffers the hub routes. A source is
anything that can fill an int32 buffer: a WAV file being played back, or
a live capture device.

The pump connects a source to a hub and paces itself off the sink: a
full destination is back-pressure, not an error.
*/
package source

// Source yields interleaved 32-bit samples. Read fills buf and returns
// the number of samples written; it returns io.EOF once the source is
// exhausted. A short read is not an error.
type Source interface {
	Read(buf []int32) (int, error)
	Close() error
}
