package variant

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"motionforge/internal/config"
	"motionforge/internal/mission"
)

// intensityCycle is the fixed set of camera-motion multipliers. Variant k
// uses entry k mod 3: the baseline first, then a calmer and a more
// aggressive camera.
var intensityCycle = [3]float64{1.0, 0.7, 1.5}

// noiseSeedStep spaces the per-variant noise seeds.
const noiseSeedStep = 137

// RenderVariant is one deterministic rendering configuration. Every field is
// a pure function of the mission and the variant index, never of the clock
// or of other variants.
type RenderVariant struct {
	Index              int     `json:"index"`
	MissionID          string  `json:"mission_id"`
	CameraIntensity    float64 `json:"camera_intensity"`
	NoiseSeed          int64   `json:"noise_seed"`
	NoiseStrength      float64 `json:"noise_strength"`
	AudioOffsetSeconds float64 `json:"audio_offset_seconds"`
	Fingerprint        string  `json:"fingerprint"`
}

// Derive computes variant index's descriptor for a mission.
func Derive(m *mission.Mission, index int, cfg config.Variants) RenderVariant {
	v := RenderVariant{
		Index:              index,
		MissionID:          m.Metadata.MissionID,
		CameraIntensity:    intensityCycle[index%len(intensityCycle)],
		NoiseSeed:          int64(index) * noiseSeedStep,
		NoiseStrength:      noiseStrength(index, cfg.NoiseBaseStrength),
		AudioOffsetSeconds: audioOffset(index, cfg.AudioOffsetSeconds),
	}
	v.Fingerprint = fingerprint(v)
	return v
}

// Generate produces count variant descriptors. Variants are independent:
// each is derived in isolation and may be rendered in any order.
func Generate(m *mission.Mission, count int, cfg config.Variants) ([]RenderVariant, error) {
	if m == nil {
		return nil, fmt.Errorf("variant: nil mission")
	}
	if count < 1 {
		return nil, fmt.Errorf("variant: count must be at least 1, got %d", count)
	}
	variants := make([]RenderVariant, count)
	for i := 0; i < count; i++ {
		variants[i] = Derive(m, i, cfg)
	}
	return variants, nil
}

// noiseStrength cycles the film-grain strength 0.1 percentage points around
// the configured base, keeping adjacent variants visually distinct. The
// result is a fraction of full scale, not a percentage.
func noiseStrength(index int, basePercent float64) float64 {
	percent := basePercent + 0.1*float64(index%3-1)
	return percent / 100
}

// audioOffset alternates the sign of the configured offset by variant
// parity.
func audioOffset(index int, offset float64) float64 {
	if index%2 == 1 {
		return -offset
	}
	return offset
}

func fingerprint(v RenderVariant) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%.6f|%d|%.6f|%.6f",
		v.MissionID, v.Index, v.CameraIntensity, v.NoiseSeed, v.NoiseStrength, v.AudioOffsetSeconds)
	return hex.EncodeToString(h.Sum(nil))
}

// FileFingerprint hashes a rendered media file, giving each finished variant
// a distinct content identity.
func FileFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("variant: fingerprint %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("variant: fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
