package detect

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Detector produces per-frame detections for a source video.
type Detector interface {
	Analyze(ctx context.Context, videoPath, workDir string) ([]Frame, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps the external detector CLI. The detector consumes a video and
// writes one JSON object per frame, in frame order, to a JSONL sidecar file.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a detector client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("detector binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Analyze runs the detector against the video and parses the sidecar output.
// The sidecar is left in workDir so failed runs can be inspected.
func (c *Client) Analyze(ctx context.Context, videoPath, workDir string) ([]Frame, error) {
	videoPath = strings.TrimSpace(videoPath)
	if videoPath == "" {
		return nil, errors.New("detect: video path required")
	}
	if workDir == "" {
		workDir = filepath.Dir(videoPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("detect: ensure work dir: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	sidecar := SidecarPath(workDir, videoPath)
	args := []string{"--video", videoPath, "--output", sidecar, "--format", "jsonl"}
	if err := c.exec.Run(runCtx, c.binary, args); err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}

	frames, err := ReadSidecar(sidecar)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("detect: %s produced no frames", filepath.Base(videoPath))
	}
	return frames, nil
}

// SidecarPath returns the detector output location for a source video.
func SidecarPath(workDir, videoPath string) string {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(workDir, base+".detections.jsonl")
}

// ReadSidecar parses a JSONL sidecar file into frames.
func ReadSidecar(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("detect: open sidecar: %w", err)
	}
	defer f.Close()
	return ReadFrames(f)
}

// ReadFrames decodes one frame per line from r. Frames must appear in
// ascending frame order; gaps are rejected so downstream per-frame state
// (mouth normalization, flow integration) never skips silently.
func ReadFrames(r io.Reader) ([]Frame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var frames []Frame
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var frame Frame
		if err := json.Unmarshal([]byte(text), &frame); err != nil {
			return nil, fmt.Errorf("detect: parse sidecar line %d: %w", line, err)
		}
		if frame.Index != len(frames) {
			return nil, fmt.Errorf("detect: sidecar line %d: expected frame %d, got %d", line, len(frames), frame.Index)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("detect: read sidecar: %w", err)
	}
	return frames, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}
