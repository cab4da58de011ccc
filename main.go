// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"audiohub/cmd"
	"audiohub/internal/config"
	"audiohub/internal/device"
	"audiohub/internal/dsp"
	"audiohub/internal/hub"
	applog "audiohub/internal/log"
	"audiohub/internal/sink"
	"audiohub/internal/source"
	"audiohub/internal/tui"
	"audiohub/pkg/build"
)

// main is the entry point for the audio routing application.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Initialize PortAudio
//   - Parse command line arguments and load configuration
//
// 2. Concurrent Phase (Hot Path):
//   - Build the DSP chain and the active sink
//   - Attach the sink to the hub
//   - Run playback or capture until done or interrupted
//
// 3. Shutdown Phase (Cold Path):
//   - Drain the sink so the audio tail is not cut off
//   - Close the hub's stages and the sink
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Build information is injected via ldflags; dev builds run without it.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build info unavailable: %v", err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the audio callback (time-critical)
	// - One thread for routing and I/O operations
	runtime.GOMAXPROCS(2)

	// Initialize PortAudio subsystem
	if err := device.Initialize(); err != nil {
		applog.Fatal(err)
	}
	defer device.Terminate()

	options, changed, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatal(err)
	}

	cfg, err := config.Load(options.ConfigPath)
	if err != nil {
		applog.Fatal(err)
	}
	options.Apply(cfg, changed)

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	switch options.Command {
	case "list":
		devices, err := device.List()
		if err != nil {
			applog.Fatal(err)
		}
		device.Print(devices)
		return

	case "play":
		if err := runPlayback(cfg, options.PlayFile); err != nil {
			applog.Fatal(err)
		}
		return

	case "capture":
		if err := runCapture(cfg); err != nil {
			applog.Fatal(err)
		}
		return
	}

	if options.TUIMode {
		if err := tui.StartDeviceBrowser(); err != nil {
			applog.Fatal(err)
		}
	}
}

// runPlayback streams a WAV file through the chain into the active sink.
func runPlayback(cfg *config.Config, path string) error {
	src, err := source.OpenWAV(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if d, err := src.Duration(); err == nil {
		applog.Infof("Playing %s (%.1fs, %d Hz, %d channels)", path, d, src.SampleRate(), src.Channels())
	}

	h, err := buildHub(cfg, float64(src.SampleRate()))
	if err != nil {
		return err
	}
	defer h.Close()

	// The sink runs at the file's format, not the configured capture format.
	s, err := buildSink(cfg, float64(src.SampleRate()), src.Channels())
	if err != nil {
		return err
	}
	defer s.Close()
	h.SetSink(s)

	if pb, ok := s.(*sink.Playback); ok {
		if err := pb.Start(); err != nil {
			return err
		}
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = source.Pump(ctx, src, h, source.PumpOptions{
		FramesPerBuffer: cfg.Audio.FramesPerBuffer * src.Channels(),
	})
	if err != nil && ctx.Err() == nil {
		return err
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if pb, ok := s.(*sink.Playback); ok && ctx.Err() == nil {
		pb.Drain(5 * time.Second)
	}

	stats := h.Stats()
	applog.Infof("Session: %d buffers in, %d samples delivered, %d dropped",
		stats.BuffersIn, stats.Delivered, stats.Dropped)
	return nil
}

// runCapture routes live device input through the chain into the sink.
func runCapture(cfg *config.Config) error {
	h, err := buildHub(cfg, cfg.Audio.SampleRate)
	if err != nil {
		return err
	}
	defer h.Close()

	s, err := buildSink(cfg, cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		return err
	}
	defer s.Close()
	h.SetSink(s)

	if pb, ok := s.(*sink.Playback); ok {
		if err := pb.Start(); err != nil {
			return err
		}
	}

	inputDevice, err := device.Input(cfg.Audio.InputDevice)
	if err != nil {
		return err
	}

	capture, err := source.NewCapture(h, source.CaptureParams{
		Device:          inputDevice,
		SampleRate:      cfg.Audio.SampleRate,
		Channels:        cfg.Audio.Channels,
		FramesPerBuffer: cfg.Audio.FramesPerBuffer,
		LowLatency:      cfg.Audio.LowLatency,
	})
	if err != nil {
		return err
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	if err := capture.Start(); err != nil {
		return err
	}

	fmt.Printf("Capturing from %s. Press Ctrl+C to stop.\n", inputDevice.Name)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := capture.Close(); err != nil {
		applog.Errorf("Error closing capture: %v", err)
	}

	stats := h.Stats()
	applog.Infof("Session: %d buffers in, %d samples delivered, %d dropped",
		stats.BuffersIn, stats.Delivered, stats.Dropped)
	return nil
}

// buildHub constructs the hub with the configured DSP chain.
func buildHub(cfg *config.Config, sampleRate float64) (*hub.Hub, error) {
	stages, err := dsp.BuildChain(cfg.Chain, sampleRate)
	if err != nil {
		return nil, err
	}

	h := hub.New(stages...)
	if names := h.Chain(); len(names) > 0 {
		applog.Infof("Chain: %v", names)
	}
	return h, nil
}

// buildSink constructs the configured sink. The caller owns it: the hub
// only holds a reference and never closes it.
func buildSink(cfg *config.Config, sampleRate float64, channels int) (sink.Sink, error) {
	switch cfg.Sink.Type {
	case config.SinkPlayback:
		outputDevice, err := device.Output(cfg.Audio.OutputDevice)
		if err != nil {
			return nil, err
		}
		return sink.NewPlayback(sink.PlaybackParams{
			Device:          outputDevice,
			SampleRate:      sampleRate,
			Channels:        channels,
			FramesPerBuffer: cfg.Audio.FramesPerBuffer,
			LowLatency:      cfg.Audio.LowLatency,
			QueueFrames:     cfg.Sink.QueueFrames,
		})

	case config.SinkWAV:
		return sink.NewWAVWriter(cfg.Sink.Target, int(sampleRate), channels)

	case config.SinkUDP:
		return sink.NewUDP(cfg.Sink.Target)

	case config.SinkNull:
		return sink.NewNull(), nil

	default:
		return nil, fmt.Errorf("unknown sink type '%s'", cfg.Sink.Type)
	}
}
