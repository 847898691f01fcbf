package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Service wraps the ffmpeg CLI for audio preparation and final muxing.
type Service struct {
	binary        string
	timeout       time.Duration
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an ffmpeg service.
func NewService(binary string, timeoutSeconds int) *Service {
	if binary == "" {
		binary = "ffmpeg"
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

// ExtractAudio pulls the audio track into a mono 16 kHz WAV suitable for the
// transcription and phoneme collaborators.
func (s *Service) ExtractAudio(ctx context.Context, source, dest string) error {
	if err := ensureDestDir(dest); err != nil {
		return err
	}
	args := []string{
		"-y", "-i", source,
		"-vn", "-ac", "1", "-ar", "16000",
		"-acodec", "pcm_s16le",
		dest,
	}
	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// NormalizeLoudness applies single-pass EBU R128 loudness normalization.
func (s *Service) NormalizeLoudness(ctx context.Context, source, dest string) error {
	if err := ensureDestDir(dest); err != nil {
		return err
	}
	args := []string{
		"-y", "-i", source,
		"-af", "loudnorm=I=-16:TP=-1.5:LRA=11",
		dest,
	}
	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("normalize loudness: %w", err)
	}
	return nil
}

// CompositeJob describes the final assembly of one render variant: the
// rendered visual sequence, the offset-adjusted audio, the deterministic
// noise pass, and the overlay asset.
type CompositeJob struct {
	VideoPath          string
	AudioPath          string
	OverlayPath        string
	OutputPath         string
	NoiseSeed          int64
	NoiseStrength      float64
	AudioOffsetSeconds float64
}

// Composite muxes a variant's rendered video with its audio track. Noise
// seed and strength come from the variant descriptor so the same variant
// always produces the same pixels.
func (s *Service) Composite(ctx context.Context, job CompositeJob) error {
	if job.VideoPath == "" || job.OutputPath == "" {
		return fmt.Errorf("composite: video and output paths required")
	}
	if err := ensureDestDir(job.OutputPath); err != nil {
		return err
	}

	args := []string{"-y", "-i", job.VideoPath}
	if job.AudioPath != "" {
		if job.AudioOffsetSeconds != 0 {
			args = append(args, "-itsoffset", fmt.Sprintf("%.3f", job.AudioOffsetSeconds))
		}
		args = append(args, "-i", job.AudioPath)
	}
	if job.OverlayPath != "" {
		args = append(args, "-i", job.OverlayPath)
	}

	args = append(args, "-filter_complex", buildFilterGraph(job))
	args = append(args, "-map", "[vout]")
	if job.AudioPath != "" {
		args = append(args, "-map", "1:a", "-c:a", "aac", "-b:a", "192k")
	}
	args = append(args,
		"-c:v", "libx264", "-preset", "medium", "-crf", "20",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-shortest",
		job.OutputPath,
	)

	if err := s.run(ctx, args...); err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	return nil
}

// buildFilterGraph assembles the video filter chain: temporal noise at the
// variant's strength, then the overlay in the top-right corner when present.
func buildFilterGraph(job CompositeJob) string {
	noise := fmt.Sprintf("[0:v]noise=all_seed=%d:alls=%.2f:allf=t", job.NoiseSeed, job.NoiseStrength*100)
	if job.OverlayPath == "" {
		return noise + "[vout]"
	}
	overlayInput := 1
	if job.AudioPath != "" {
		overlayInput = 2
	}
	return fmt.Sprintf("%s[noisy];[noisy][%d:v]overlay=W-w-20:20[vout]", noise, overlayInput)
}

func (s *Service) run(ctx context.Context, args ...string) error {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if s.commandRunner != nil {
		return s.commandRunner(runCtx, s.binary, args...)
	}
	cmd := exec.CommandContext(runCtx, s.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", s.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func ensureDestDir(dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	return nil
}
