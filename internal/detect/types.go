package detect

// Landmark is a single tracked point in normalized image coordinates.
// X and Y lie in [0, 1] relative to frame width and height; Z is relative
// depth with the anchor at the origin. Visibility is the tracker's estimate
// that the point is unoccluded.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Face holds the face mesh landmarks for one detected person in one frame.
type Face struct {
	Landmarks  []Landmark `json:"landmarks"`
	Confidence float64    `json:"confidence"`
}

// Pose holds the body landmarks for one detected person in one frame.
type Pose struct {
	Landmarks  []Landmark `json:"landmarks"`
	Confidence float64    `json:"confidence"`
}

// FlowVector is one sampled dense optical-flow displacement.
type FlowVector struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// FlowStats summarizes dense optical flow between a frame and its predecessor.
// The first frame of a video carries zero flow.
type FlowStats struct {
	MeanMagnitude float64      `json:"mean_magnitude"`
	MeanAngle     float64      `json:"mean_angle"`
	Vectors       []FlowVector `json:"vectors,omitempty"`
}

// Frame is the full detection payload for one video frame. Faces and Poses
// are index-aligned: face i and pose i belong to the same detected person,
// in detector output order.
type Frame struct {
	Index int       `json:"frame"`
	Faces []Face    `json:"faces"`
	Poses []Pose    `json:"poses"`
	Flow  FlowStats `json:"flow"`
}

// PersonCount returns how many people the detector reported for the frame.
// Face and pose lists can disagree when one tracker loses a subject; the
// smaller count is authoritative.
func (f Frame) PersonCount() int {
	if len(f.Faces) < len(f.Poses) {
		return len(f.Faces)
	}
	return len(f.Poses)
}
