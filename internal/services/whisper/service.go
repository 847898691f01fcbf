package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultModel is used when the configuration leaves the model empty.
const DefaultModel = "base"

// Service wraps the whisper CLI for whole-file transcription.
type Service struct {
	binary        string
	model         string
	timeout       time.Duration
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service.
func NewService(binary, model string, timeoutSeconds int) *Service {
	if binary == "" {
		binary = "whisper"
	}
	if model == "" {
		model = DefaultModel
	}
	return &Service{
		binary:  binary,
		model:   model,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.model
}

// Segment is one timestamped transcript span from whisper's JSON output.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result contains the transcription outcome.
type Result struct {
	Text     string
	Segments []Segment
	JSONPath string
}

type whisperPayload struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Transcribe runs whisper against an audio file and parses the JSON output
// it writes next to the source name in outputDir.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir string) (Result, error) {
	var result Result

	audioPath = strings.TrimSpace(audioPath)
	if audioPath == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := []string{
		audioPath,
		"--model", s.model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--fp16", "False",
	}
	if err := s.run(runCtx, s.binary, args...); err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	result.JSONPath = filepath.Join(outputDir, baseName+".json")

	payload, err := loadPayload(result.JSONPath)
	if err != nil {
		return result, fmt.Errorf("whisper: %w", err)
	}
	result.Segments = payload.Segments
	result.Text = strings.TrimSpace(payload.Text)
	if result.Text == "" {
		result.Text = joinSegments(payload.Segments)
	}
	return result, nil
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

func loadPayload(jsonPath string) (whisperPayload, error) {
	var payload whisperPayload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse transcript json: %w", err)
	}
	return payload, nil
}

func joinSegments(segments []Segment) string {
	var parts []string
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
