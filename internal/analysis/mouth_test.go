package analysis_test

import (
	"testing"

	"motionforge/internal/analysis"
	"motionforge/internal/detect"
)

func faceWithLipGap(gap float64) detect.Face {
	landmarks := make([]detect.Landmark, 15)
	landmarks[13] = detect.Landmark{X: 0.5, Y: 0.5}
	landmarks[14] = detect.Landmark{X: 0.5, Y: 0.5 + gap}
	return detect.Face{Landmarks: landmarks, Confidence: 0.9}
}

func TestRatioCoincidentLipsIsZero(t *testing.T) {
	tracker := analysis.NewMouthTracker(13, 14)
	ratio, ok := tracker.Ratio(faceWithLipGap(0))
	if !ok {
		t.Fatal("expected ratio to be available")
	}
	if ratio != 0 {
		t.Fatalf("expected 0 for coincident lips, got %v", ratio)
	}
}

func TestRatioRunningMaxNormalization(t *testing.T) {
	tracker := analysis.NewMouthTracker(13, 14)

	// First observed gap becomes the maximum, so ratio is exactly 1.
	ratio, _ := tracker.Ratio(faceWithLipGap(0.02))
	if ratio != 1 {
		t.Fatalf("first non-zero gap should be ratio 1, got %v", ratio)
	}

	// Half the running max.
	ratio, _ = tracker.Ratio(faceWithLipGap(0.01))
	if ratio != 0.5 {
		t.Fatalf("expected 0.5, got %v", ratio)
	}

	// A new maximum rescales to 1 again.
	ratio, _ = tracker.Ratio(faceWithLipGap(0.04))
	if ratio != 1 {
		t.Fatalf("new max should be ratio 1, got %v", ratio)
	}

	// Old max is now half of the new one.
	ratio, _ = tracker.Ratio(faceWithLipGap(0.02))
	if ratio != 0.5 {
		t.Fatalf("expected 0.5 after rescale, got %v", ratio)
	}
}

func TestRatioAlwaysInUnitInterval(t *testing.T) {
	tracker := analysis.NewMouthTracker(13, 14)
	gaps := []float64{0, 0.01, 0.5, 0.003, 0.2, 0}
	for _, gap := range gaps {
		ratio, ok := tracker.Ratio(faceWithLipGap(gap))
		if !ok {
			t.Fatalf("gap %v: ratio unavailable", gap)
		}
		if ratio < 0 || ratio > 1 {
			t.Fatalf("gap %v: ratio %v outside [0,1]", gap, ratio)
		}
	}
}

func TestRatioUnavailableWithoutLipLandmarks(t *testing.T) {
	tracker := analysis.NewMouthTracker(13, 14)
	if _, ok := tracker.Ratio(detect.Face{Landmarks: make([]detect.Landmark, 5)}); ok {
		t.Fatal("expected ratio to be unavailable for short landmark list")
	}
}
