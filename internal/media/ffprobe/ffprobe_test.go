package ffprobe_test

import (
	"testing"

	"motionforge/internal/media/ffprobe"
)

const samplePayload = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 1080,
      "height": 1920,
      "r_frame_rate": "60/1",
      "nb_frames": "360"
    },
    {
      "index": 1,
      "codec_name": "aac",
      "codec_type": "audio",
      "sample_rate": "48000",
      "channels": 2
    }
  ],
  "format": {
    "filename": "sample.mp4",
    "nb_streams": 2,
    "duration": "6.000000",
    "size": "1048576",
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2"
  }
}`

func TestParseExtractsVideoMetadata(t *testing.T) {
	result, err := ffprobe.Parse([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	stream := result.VideoStream()
	if stream == nil {
		t.Fatal("expected a video stream")
	}
	if stream.Width != 1080 || stream.Height != 1920 {
		t.Fatalf("unexpected resolution: %dx%d", stream.Width, stream.Height)
	}
	if got := result.FrameRate(); got != 60 {
		t.Fatalf("expected 60 fps, got %v", got)
	}
	if got := result.FrameCount(); got != 360 {
		t.Fatalf("expected 360 frames, got %d", got)
	}
	if got := result.AudioStreamCount(); got != 1 {
		t.Fatalf("expected 1 audio stream, got %d", got)
	}
	if got := result.DurationSeconds(); got != 6 {
		t.Fatalf("expected 6s duration, got %v", got)
	}
}

func TestFrameCountDerivedFromDuration(t *testing.T) {
	payload := `{
  "streams": [{"index": 0, "codec_type": "video", "r_frame_rate": "30000/1001"}],
  "format": {"duration": "10.0"}
}`
	result, err := ffprobe.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := result.FrameCount(); got != 300 {
		t.Fatalf("expected ~300 frames, got %d", got)
	}
}

func TestFrameRateHandlesMalformedRationals(t *testing.T) {
	cases := []struct {
		rate string
		want float64
	}{
		{"60/1", 60},
		{"24", 24},
		{"0/0", 0},
		{"garbage", 0},
		{"", 0},
	}
	for _, tc := range cases {
		payload := `{"streams": [{"index": 0, "codec_type": "video", "r_frame_rate": "` + tc.rate + `"}], "format": {}}`
		result, err := ffprobe.Parse([]byte(payload))
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.rate, err)
		}
		if got := result.FrameRate(); got != tc.want {
			t.Fatalf("FrameRate(%q) = %v, want %v", tc.rate, got, tc.want)
		}
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	if _, err := ffprobe.Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
