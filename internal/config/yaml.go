// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"audiohub/internal/dsp"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug    bool              `yaml:"debug"`     // Enable debug mode (verbose logging).
	LogLevel string            `yaml:"log_level"` // Logging level ("debug", "info", "warn", "error").
	Audio    AudioConfig       `yaml:"audio"`     // Audio device and buffer settings.
	Sink     SinkConfig        `yaml:"sink"`      // Destination for processed samples.
	Chain    []dsp.StageConfig `yaml:"chain"`     // Ordered DSP stage descriptors.
}

// AudioConfig holds settings related to audio input/output and buffering.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index for capture (-1 for default).
	OutputDevice    int     `yaml:"output_device"`     // PortAudio device index for playback (-1 for default).
	SampleRate      float64 `yaml:"sample_rate"`       // Sample rate in Hz (e.g., 44100, 48000).
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Audio frames per processing buffer.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency settings from the device.
	Channels        int     `yaml:"channels"`          // Channel count (1 for mono, 2 for stereo).
}

// SinkConfig selects and configures the active sink.
type SinkConfig struct {
	Type        string `yaml:"type"`         // "playback", "wav", "udp", or "null".
	Target      string `yaml:"target"`       // Output path for wav, host:port for udp.
	QueueFrames int    `yaml:"queue_frames"` // Playback queue depth in frames (0 for default).
}

// Load loads configuration from a YAML file specified by path. If path is
// empty it checks "config.yaml" in the working directory and falls back to
// built-in defaults. Environment variable overrides apply after the file,
// then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Config{
		Debug:    false,
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			OutputDevice:    DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			LowLatency:      DefaultLowLatency,
			Channels:        DefaultChannels,
		},
		Sink: SinkConfig{
			Type: SinkPlayback,
		},
	}

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		} else {
			cfg.applyEnvOverrides()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid default configuration: %w", err)
			}
			return &cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %.0f outside [%d, %d]", c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		return fmt.Errorf("audio.frames_per_buffer %d outside (0, %d]", c.Audio.FramesPerBuffer, MaxBufferFrames)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels)
	}
	if c.Audio.InputDevice < MinDeviceID {
		return fmt.Errorf("audio.input_device %d below %d", c.Audio.InputDevice, MinDeviceID)
	}
	if c.Audio.OutputDevice < MinDeviceID {
		return fmt.Errorf("audio.output_device %d below %d", c.Audio.OutputDevice, MinDeviceID)
	}

	switch c.Sink.Type {
	case SinkPlayback, SinkNull:
	case SinkWAV, SinkUDP:
		if c.Sink.Target == "" {
			return fmt.Errorf("sink.target must be set for sink type '%s'", c.Sink.Type)
		}
	default:
		return fmt.Errorf("unknown sink type '%s'", c.Sink.Type)
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the loaded values.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}

	// ENV_SINK_{...}
	// These are specific to the sink selection.

	// ENV_SINK_TYPE
	if val, ok := os.LookupEnv("ENV_SINK_TYPE"); ok {
		cfg.Sink.Type = val
	}
	// ENV_SINK_TARGET
	if val, ok := os.LookupEnv("ENV_SINK_TARGET"); ok {
		cfg.Sink.Target = val
	}
}
