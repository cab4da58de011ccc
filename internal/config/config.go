// SPDX-License-Identifier: MIT
package config

// Core configuration constants that define the boundaries and defaults
// for the routing pipeline.
const (
	// Default values for the audio configuration
	DefaultChannels        = 1           // Mono audio
	DefaultDeviceID        = MinDeviceID // Default to system default device
	DefaultFramesPerBuffer = 512         // Balanced latency/performance
	DefaultLowLatency      = false       // Standard latency mode
	DefaultSampleRate      = 44100       // CD-quality audio
	DefaultLogLevel        = "info"      // Quiet operation

	// Hardware and processing limits
	MinDeviceID     = -1     // -1 represents system default device
	MinSampleRate   = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate   = 192000 // Maximum supported sample rate (Hz)
	MaxBufferFrames = 8192   // Maximum frames per buffer (power of 2)
)

// Sink type names accepted in configuration and on the command line.
const (
	SinkPlayback = "playback"
	SinkWAV      = "wav"
	SinkUDP      = "udp"
	SinkNull     = "null"
)
