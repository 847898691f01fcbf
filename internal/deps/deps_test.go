package deps

import (
	"os"
	"path/filepath"
	"testing"

	"motionforge/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: ""},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary detail, got %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected unconfigured detail, got %#v", results[2])
	}
}

func TestDefaultCoversConfiguredTools(t *testing.T) {
	cfg := config.Default()

	reqs := Default(&cfg)
	if len(reqs) == 0 {
		t.Fatal("expected requirements for default config")
	}

	byName := make(map[string]Requirement, len(reqs))
	for _, req := range reqs {
		byName[req.Name] = req
	}
	if byName["FFmpeg"].Command != cfg.Tools.FFmpegBinary {
		t.Fatalf("FFmpeg command = %q, want %q", byName["FFmpeg"].Command, cfg.Tools.FFmpegBinary)
	}
	if !byName["Whisper"].Optional || !byName["Rhubarb"].Optional {
		t.Fatal("speech tools should be optional")
	}
	if byName["Blender"].Optional {
		t.Fatal("blender is required")
	}
}
