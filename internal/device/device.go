// SPDX-License-Identifier: MIT
//
// Package device wraps PortAudio subsystem lifecycle and device lookup.
package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DefaultID selects the system default device.
const DefaultID = -1

// Device describes an audio device independent of the PortAudio types.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with Terminate().
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
// This should be deferred immediately after Initialize().
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// Output retrieves the audio output device for the given device ID.
// DefaultID (-1) returns the system default output device.
func Output(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultID {
		return portaudio.DefaultOutputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	if devices[deviceID].MaxOutputChannels == 0 {
		return nil, fmt.Errorf("device %d (%s) has no output channels", deviceID, devices[deviceID].Name)
	}
	return devices[deviceID], nil
}

// Input retrieves the audio input device for the given device ID.
// DefaultID (-1) returns the system default input device.
func Input(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultID {
		return portaudio.DefaultInputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	if devices[deviceID].MaxInputChannels == 0 {
		return nil, fmt.Errorf("device %d (%s) has no input channels", deviceID, devices[deviceID].Name)
	}
	return devices[deviceID], nil
}

// List returns all available audio devices.
func List() ([]Device, error) {
	paDeviceInfos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(paDeviceInfos))
	for i, info := range paDeviceInfos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// Type returns a human readable direction label for the device.
func (d Device) Type() string {
	switch {
	case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
		return "Input/Output"
	case d.MaxInputChannels > 0:
		return "Input"
	case d.MaxOutputChannels > 0:
		return "Output"
	default:
		return ""
	}
}

// Print writes a device listing to stdout, one block per device.
func Print(devices []Device) {
	fmt.Printf("\nAvailable Audio Devices\n\n")
	for _, d := range devices {
		fmt.Printf("[%d] %s (%s)\n", d.ID, d.Name, d.Type())
		fmt.Printf("    Input channels: %d, Output channels: %d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n\n", d.DefaultSampleRate)
	}
}
