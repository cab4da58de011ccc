// SPDX-License-Identifier: MIT
package build

import (
	"strings"
	"testing"
)

// resetFlags restores the package variables between cases.
func resetFlags(name, description, time, commit, version string) {
	buildName = name
	buildDescription = description
	buildTime = time
	buildCommit = commit
	buildVersion = version
}

func TestInitializeMissingFlags(t *testing.T) {
	tests := []struct {
		desc        string
		name        string
		description string
		time        string
		commit      string
		version     string
		wantErr     string
	}{
		{"Missing name", "", "d", "t", "c", "v", "BuildName"},
		{"Missing description", "n", "", "t", "c", "v", "BuildDescription"},
		{"Missing time", "n", "d", "", "c", "v", "BuildTime"},
		{"Missing commit", "n", "d", "t", "", "v", "BuildCommit"},
		{"Missing version", "n", "d", "t", "c", "", "BuildVersion"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			resetFlags(tt.name, tt.description, tt.time, tt.commit, tt.version)

			err := Initialize()
			if err == nil {
				t.Fatal("Expected error for missing build flag, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestInitializeComplete(t *testing.T) {
	resetFlags("audiohub", "Audio router", "2025-01-01T00:00:00Z", "abc123", "0.1.0")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize failed with all flags set: %v", err)
	}

	flags := GetBuildFlags()
	if flags.Name != "audiohub" {
		t.Errorf("Name = %q, want %q", flags.Name, "audiohub")
	}
	if flags.Description != "Audio router" {
		t.Errorf("Description = %q, want %q", flags.Description, "Audio router")
	}
	if flags.Version != "0.1.0" {
		t.Errorf("Version = %q, want %q", flags.Version, "0.1.0")
	}
	if flags.Commit != "abc123" {
		t.Errorf("Commit = %q, want %q", flags.Commit, "abc123")
	}
}

func TestGetBuildFlagsDefaults(t *testing.T) {
	resetFlags("", "", "", "", "")
	_ = Initialize() // Fails, defaults must survive

	flags := GetBuildFlags()
	if flags == nil {
		t.Fatal("GetBuildFlags returned nil")
	}
	if flags.Name == "" {
		t.Error("Default name should never be empty")
	}
	if flags.Description == "" {
		t.Error("Default description should never be empty")
	}
}
