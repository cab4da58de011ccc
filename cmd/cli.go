// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"

	"audiohub/internal/config"
	"audiohub/pkg/build"

	"github.com/spf13/cobra"
)

// Options carries the parsed command line state back to main.
type Options struct {
	Command    string // "", "list", "play", "capture"
	PlayFile   string // WAV path for the play command
	ConfigPath string
	TUIMode    bool

	DeviceID        int
	Channels        int
	SampleRate      float64
	FramesPerBuffer int
	LowLatency      bool

	SinkType   string
	SinkTarget string

	Verbose bool
}

// Apply overlays the command line values onto a loaded configuration.
// Flags the user did not change keep the configuration file's values.
func (o *Options) Apply(cfg *config.Config, changed func(name string) bool) {
	if changed("device") {
		cfg.Audio.InputDevice = o.DeviceID
		cfg.Audio.OutputDevice = o.DeviceID
	}
	if changed("channels") {
		cfg.Audio.Channels = o.Channels
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = o.SampleRate
	}
	if changed("frames-per-buffer") {
		cfg.Audio.FramesPerBuffer = o.FramesPerBuffer
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = o.LowLatency
	}
	if changed("sink") {
		cfg.Sink.Type = o.SinkType
	}
	if changed("target") {
		cfg.Sink.Target = o.SinkTarget
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
}

// ParseArgs parses the command line. The returned Options say which
// command to run; Flags reports which flags the user set explicitly.
func ParseArgs() (*Options, func(name string) bool, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.TUIMode = true
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	playCmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Play a WAV file through the processing chain into the active sink",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("cannot open %s: %w", args[0], err)
			}
			options.Command = "play"
			options.PlayFile = args[0]
			return nil
		},
	}
	rootCmd.AddCommand(playCmd)

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Route live input through the processing chain into the active sink",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "capture"
		},
	}
	rootCmd.AddCommand(captureCmd)

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&options.DeviceID, "device", "d", config.DefaultDeviceID,
		"Specify device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.Channels, "channels", "c", config.DefaultChannels,
		"Number of channels (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&options.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&options.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Sink Configuration
	rootCmd.PersistentFlags().StringVar(&options.SinkType, "sink", config.SinkPlayback,
		"Destination for processed samples: playback, wav, udp, or null")
	rootCmd.PersistentFlags().StringVar(&options.SinkTarget, "target", "",
		"Sink target: output path for wav, host:port for udp")

	// General Configuration
	rootCmd.PersistentFlags().StringVar(&options.ConfigPath, "config", "",
		"Path to a YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, nil, err
	}

	changed := func(name string) bool {
		return rootCmd.PersistentFlags().Changed(name)
	}
	return options, changed, nil
}
