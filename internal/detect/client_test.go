package detect_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"motionforge/internal/detect"
)

type scriptedExecutor struct {
	calls  int
	binary string
	args   []string
	write  func(args []string) error
}

func (s *scriptedExecutor) Run(_ context.Context, binary string, args []string) error {
	s.calls++
	s.binary = binary
	s.args = args
	if s.write != nil {
		return s.write(args)
	}
	return nil
}

func sidecarArg(args []string) string {
	for i, arg := range args {
		if arg == "--output" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func writeSidecarLines(t *testing.T, path string, frames []detect.Frame) {
	t.Helper()
	var sb strings.Builder
	for _, frame := range frames {
		data, err := json.Marshal(frame)
		if err != nil {
			t.Fatalf("marshal frame: %v", err)
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
}

func TestAnalyzeParsesSidecar(t *testing.T) {
	workDir := t.TempDir()
	frames := []detect.Frame{
		{Index: 0, Faces: []detect.Face{{Confidence: 0.9}}, Poses: []detect.Pose{{}}},
		{Index: 1, Faces: []detect.Face{{Confidence: 0.8}}, Poses: []detect.Pose{{}}, Flow: detect.FlowStats{MeanMagnitude: 1.5}},
	}
	exec := &scriptedExecutor{write: func(args []string) error {
		writeSidecarLines(t, sidecarArg(args), frames)
		return nil
	}}

	client, err := detect.New("mf-detect", 60, detect.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got, err := client.Analyze(context.Background(), "/videos/clip.mp4", workDir)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if exec.calls != 1 || exec.binary != "mf-detect" {
		t.Fatalf("unexpected executor invocation: %+v", exec)
	}
	if len(got) != 2 || got[1].Flow.MeanMagnitude != 1.5 {
		t.Fatalf("unexpected frames: %#v", got)
	}
}

func TestAnalyzeRejectsEmptyOutput(t *testing.T) {
	workDir := t.TempDir()
	exec := &scriptedExecutor{write: func(args []string) error {
		return os.WriteFile(sidecarArg(args), nil, 0o644)
	}}
	client, err := detect.New("mf-detect", 60, detect.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.Analyze(context.Background(), "/videos/clip.mp4", workDir); err == nil {
		t.Fatal("expected error for empty sidecar")
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := detect.New("  ", 60); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestReadFramesRejectsGaps(t *testing.T) {
	input := `{"frame": 0, "faces": [], "poses": [], "flow": {}}
{"frame": 2, "faces": [], "poses": [], "flow": {}}`
	if _, err := detect.ReadFrames(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for frame gap")
	}
}

func TestReadFramesSkipsBlankLines(t *testing.T) {
	input := `{"frame": 0, "faces": [], "poses": [], "flow": {}}

{"frame": 1, "faces": [], "poses": [], "flow": {}}
`
	frames, err := detect.ReadFrames(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadFrames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
}

func TestSidecarPath(t *testing.T) {
	got := detect.SidecarPath("/work", "/videos/clip.mp4")
	want := filepath.Join("/work", "clip.detections.jsonl")
	if got != want {
		t.Fatalf("SidecarPath = %s, want %s", got, want)
	}
}

func TestPersonCountUsesSmallerList(t *testing.T) {
	frame := detect.Frame{
		Faces: []detect.Face{{}, {}},
		Poses: []detect.Pose{{}},
	}
	if got := frame.PersonCount(); got != 1 {
		t.Fatalf("PersonCount = %d, want 1", got)
	}
}
