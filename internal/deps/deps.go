// Package deps reports the availability of the external tools the pipeline
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"motionforge/internal/config"
)

// Requirement defines an external binary the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Default lists the external tools configured for the pipeline. Speech tools
// are optional: silent footage renders without them.
func Default(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{Name: "FFmpeg", Command: cfg.Tools.FFmpegBinary, Description: "Audio extraction and variant compositing"},
		{Name: "FFprobe", Command: cfg.Tools.FFprobeBinary, Description: "Source video inspection"},
		{Name: "Detector", Command: cfg.Tools.DetectorBinary, Description: "Face, pose, and optical-flow extraction"},
		{Name: "Whisper", Command: cfg.Tools.WhisperBinary, Description: "Speech transcription", Optional: true},
		{Name: "Rhubarb", Command: cfg.Tools.RhubarbBinary, Description: "Phoneme cue generation", Optional: true},
		{Name: "Blender", Command: cfg.Tools.BlenderBinary, Description: "Variant rendering"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
