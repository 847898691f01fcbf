package blender

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Service wraps headless blender as the rendering engine collaborator. It
// receives a fully assembled render job document and produces the raw visual
// sequence for one variant.
type Service struct {
	binary        string
	script        string
	timeout       time.Duration
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a rendering service. script is the Python driver that
// blender executes to load the job document and build the scene.
func NewService(binary, script string, timeoutSeconds int) (*Service, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "blender"
	}
	script = strings.TrimSpace(script)
	if script == "" {
		return nil, errors.New("blender: render script required")
	}
	return &Service{
		binary:  binary,
		script:  script,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Render executes blender against a committed render job document and checks
// that the expected output file appeared. Partial output is removed so a
// failed render is never mistaken for a finished one.
func (s *Service) Render(ctx context.Context, jobPath, outputPath string) error {
	if jobPath == "" || outputPath == "" {
		return errors.New("blender: job and output paths required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("blender: ensure output dir: %w", err)
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := []string{
		"--background",
		"--python", s.script,
		"--",
		"--job", jobPath,
		"--output", outputPath,
	}
	if err := s.run(runCtx, s.binary, args...); err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("blender render: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("blender render: no output produced: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(outputPath)
		return errors.New("blender render: empty output file")
	}
	return nil
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
