package rhubarb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"motionforge/internal/mission"
)

// Service wraps the rhubarb lip-sync CLI, the phoneme-timing collaborator.
type Service struct {
	binary        string
	timeout       time.Duration
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a phoneme-cue service.
func NewService(binary string, timeoutSeconds int) *Service {
	if binary == "" {
		binary = "rhubarb"
	}
	return &Service{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

type rhubarbPayload struct {
	MouthCues []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Value string  `json:"value"`
	} `json:"mouthCues"`
}

// Generate runs rhubarb against a finished audio file and returns the
// phoneme cues. The JSON output is written beside the audio file.
func (s *Service) Generate(ctx context.Context, audioPath string) ([]mission.Cue, error) {
	audioPath = strings.TrimSpace(audioPath)
	if audioPath == "" {
		return nil, fmt.Errorf("rhubarb: audio path required")
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	outputPath := cuePath(audioPath)
	args := []string{"-f", "json", "-o", outputPath, audioPath}
	if err := s.run(runCtx, s.binary, args...); err != nil {
		return nil, fmt.Errorf("rhubarb: %w", err)
	}

	return LoadCues(outputPath)
}

// LoadCues parses a rhubarb JSON output file into mission cues.
func LoadCues(path string) ([]mission.Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rhubarb: read cues: %w", err)
	}
	var payload rhubarbPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("rhubarb: parse cues: %w", err)
	}
	cues := make([]mission.Cue, len(payload.MouthCues))
	for i, cue := range payload.MouthCues {
		cues[i] = mission.Cue{Start: cue.Start, End: cue.End, Value: cue.Value}
	}
	return cues, nil
}

func cuePath(audioPath string) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	return base + ".cues.json"
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
