// SPDX-License-Identifier: MIT
//
// Package tui provides an interactive terminal browser for audio devices.
package tui

import (
	"fmt"
	"strings"

	"audiohub/internal/device"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A56E0")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C"))
)

// roleFilter narrows the device list to a capture or playback role.
type roleFilter int

const (
	filterAll roleFilter = iota
	filterInput
	filterOutput
)

func (f roleFilter) label() string {
	switch f {
	case filterInput:
		return "Input"
	case filterOutput:
		return "Output"
	default:
		return "All"
	}
}

// DeviceBrowserModel is the Bubble Tea model for browsing audio devices.
type DeviceBrowserModel struct {
	devices       []device.Device
	filtered      []device.Device
	filter        roleFilter
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	detail        bool
	err           error
}

// NewDeviceBrowserModel creates a browser with no filter applied.
func NewDeviceBrowserModel() DeviceBrowserModel {
	return DeviceBrowserModel{filter: filterAll}
}

// Init starts the device fetch.
func (m DeviceBrowserModel) Init() tea.Cmd {
	return fetchDevices
}

func fetchDevices() tea.Msg {
	devices, err := device.List()
	if err != nil {
		return errMsg{err}
	}
	return devicesMsg{devices}
}

type devicesMsg struct {
	devices []device.Device
}

type errMsg struct {
	err error
}

// Update handles input and refreshes the viewport content.
func (m DeviceBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
			if len(m.devices) > 0 {
				m.viewport.SetContent(m.renderDevices())
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case devicesMsg:
		m.devices = msg.devices
		m.applyFilter()
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		if m.detail {
			if key.Matches(msg, key.NewBinding(key.WithKeys("esc", "enter"))) {
				m.detail = false
				m.viewport.SetContent(m.renderDevices())
			}
			break
		}

		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if m.selectedIndex > 0 {
				m.selectedIndex--
				m.viewport.SetContent(m.renderDevices())
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if m.selectedIndex < len(m.filtered)-1 {
				m.selectedIndex++
				m.viewport.SetContent(m.renderDevices())
			}

		case key.Matches(msg, key.NewBinding(key.WithKeys("tab"))):
			m.filter = (m.filter + 1) % 3
			m.applyFilter()
			m.viewport.SetContent(m.renderDevices())

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if len(m.filtered) > 0 {
				m.detail = true
				m.viewport.SetContent(m.renderDetail())
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m DeviceBrowserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}

	var title, help string
	if m.detail {
		title = titleStyle.Render("Device Detail")
		help = infoStyle.Render("Esc: Back • q: Quit")
	} else {
		title = titleStyle.Render(fmt.Sprintf("Audio Devices: %s", m.filter.label()))
		help = infoStyle.Render("↑/↓: Navigate • Tab: Filter • Enter: Detail • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m *DeviceBrowserModel) applyFilter() {
	m.filtered = m.filtered[:0]
	for _, d := range m.devices {
		switch m.filter {
		case filterInput:
			if d.MaxInputChannels == 0 {
				continue
			}
		case filterOutput:
			if d.MaxOutputChannels == 0 {
				continue
			}
		}
		m.filtered = append(m.filtered, d)
	}
	if m.selectedIndex >= len(m.filtered) {
		m.selectedIndex = 0
	}
}

// renderDevices formats the filtered device list.
func (m DeviceBrowserModel) renderDevices() string {
	if len(m.filtered) == 0 {
		return "No audio devices match the current filter."
	}

	var sb strings.Builder
	for i, d := range m.filtered {
		info := fmt.Sprintf("[%d] %s (%s)\n", d.ID, d.Name, d.Type())
		info += fmt.Sprintf("    Input channels: %d, Output channels: %d\n",
			d.MaxInputChannels, d.MaxOutputChannels)
		info += fmt.Sprintf("    Default sample rate: %.0f Hz\n", d.DefaultSampleRate)

		if i == m.selectedIndex {
			info = highlightStyle.Render(info)
		}

		sb.WriteString(info)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderDetail formats a single device with its usable roles.
func (m DeviceBrowserModel) renderDetail() string {
	d := m.filtered[m.selectedIndex]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n\n", d.Name))
	sb.WriteString(fmt.Sprintf("Device ID:           %d\n", d.ID))
	sb.WriteString(fmt.Sprintf("Default sample rate: %.0f Hz\n\n", d.DefaultSampleRate))

	if d.MaxInputChannels > 0 {
		sb.WriteString(fmt.Sprintf("Capture:  up to %d channels\n", d.MaxInputChannels))
		sb.WriteString(dimStyle.Render(fmt.Sprintf("          audiohub --device %d\n", d.ID)))
	}
	if d.MaxOutputChannels > 0 {
		sb.WriteString(fmt.Sprintf("Playback: up to %d channels\n", d.MaxOutputChannels))
		sb.WriteString(dimStyle.Render(fmt.Sprintf("          audiohub play <file> --device %d\n", d.ID)))
	}

	return sb.String()
}

// StartDeviceBrowser launches the interactive device browser.
func StartDeviceBrowser() error {
	p := tea.NewProgram(
		NewDeviceBrowserModel(),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
