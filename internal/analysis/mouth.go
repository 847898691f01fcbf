package analysis

import (
	"math"

	"motionforge/internal/detect"
)

// MouthTracker converts the vertical gap between the inner-upper and
// inner-lower lip landmarks into a mouth-openness ratio normalized against
// the running maximum gap observed in the current video. One tracker serves
// one video; the ratio for a given absolute gap is not comparable across
// videos because faces and framings differ.
type MouthTracker struct {
	upperIndex  int
	lowerIndex  int
	maxDistance float64
}

// NewMouthTracker constructs a tracker for the given inner-lip landmark ids.
func NewMouthTracker(upperIndex, lowerIndex int) *MouthTracker {
	return &MouthTracker{upperIndex: upperIndex, lowerIndex: lowerIndex}
}

// Ratio computes the mouth-openness ratio for a face. The second return is
// false when the face mesh lacks the lip landmarks. The ratio is 0 when the
// lips coincide and exactly 1 at the largest gap observed so far.
func (t *MouthTracker) Ratio(face detect.Face) (float64, bool) {
	needed := t.upperIndex
	if t.lowerIndex > needed {
		needed = t.lowerIndex
	}
	if len(face.Landmarks) <= needed {
		return 0, false
	}

	upper := face.Landmarks[t.upperIndex]
	lower := face.Landmarks[t.lowerIndex]
	distance := math.Abs(upper.Y - lower.Y)

	if distance > t.maxDistance {
		t.maxDistance = distance
	}
	if t.maxDistance == 0 {
		return 0, true
	}
	ratio := distance / t.maxDistance
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio, true
}
