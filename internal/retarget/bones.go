package retarget

import "github.com/go-gl/mathgl/mgl64"

// Body landmark ids from the detector's fixed pose vocabulary.
const (
	lmNose          = 0
	lmLeftEar       = 7
	lmRightEar      = 8
	lmLeftShoulder  = 11
	lmRightShoulder = 12
	lmLeftElbow     = 13
	lmRightElbow    = 14
	lmLeftWrist     = 15
	lmRightWrist    = 16
	lmLeftHip       = 23
	lmRightHip      = 24
	lmLeftKnee      = 25
	lmRightKnee     = 26
	lmLeftAnkle     = 27
	lmRightAnkle    = 28
)

// anchor is a point derived from the landmark set: a single landmark, or the
// midpoint of two when b is non-negative.
type anchor struct {
	a, b int
}

func point(id int) anchor { return anchor{a: id, b: -1} }

func midpoint(a, b int) anchor { return anchor{a: a, b: b} }

func (an anchor) landmarks() []int {
	if an.b < 0 {
		return []int{an.a}
	}
	return []int{an.a, an.b}
}

// boneConfig describes how one virtual-skeleton bone derives its rotation
// from the captured landmarks: a direction anchor pair, an up anchor pair to
// fix the roll, the rest-pose vectors of the virtual skeleton, and the
// parent bones whose accumulated rotation must be cancelled so the keyframe
// stores a local rotation.
type boneConfig struct {
	Name          string
	DirectionFrom anchor
	DirectionTo   anchor
	UpFrom        anchor
	UpTo          anchor
	RestDirection mgl64.Vec3
	RestUp        mgl64.Vec3
	Cancels       []string
}

// boneConfigs is evaluated in order; every Cancels entry refers to a bone
// that appears earlier in the table.
var boneConfigs = []boneConfig{
	{
		Name:          "spine",
		DirectionFrom: midpoint(lmLeftHip, lmRightHip),
		DirectionTo:   midpoint(lmLeftShoulder, lmRightShoulder),
		UpFrom:        point(lmRightHip),
		UpTo:          point(lmLeftHip),
		RestDirection: mgl64.Vec3{0, 1, 0},
		RestUp:        mgl64.Vec3{1, 0, 0},
	},
	{
		Name:          "neck",
		DirectionFrom: midpoint(lmLeftShoulder, lmRightShoulder),
		DirectionTo:   midpoint(lmLeftEar, lmRightEar),
		UpFrom:        point(lmRightShoulder),
		UpTo:          point(lmLeftShoulder),
		RestDirection: mgl64.Vec3{0, 1, 0},
		RestUp:        mgl64.Vec3{1, 0, 0},
		Cancels:       []string{"spine"},
	},
	{
		Name:          "upper_arm.L",
		DirectionFrom: point(lmLeftShoulder),
		DirectionTo:   point(lmLeftElbow),
		UpFrom:        point(lmLeftHip),
		UpTo:          point(lmLeftShoulder),
		RestDirection: mgl64.Vec3{1, 0, 0},
		RestUp:        mgl64.Vec3{0, 1, 0},
		Cancels:       []string{"spine"},
	},
	{
		Name:          "lower_arm.L",
		DirectionFrom: point(lmLeftElbow),
		DirectionTo:   point(lmLeftWrist),
		UpFrom:        point(lmLeftHip),
		UpTo:          point(lmLeftShoulder),
		RestDirection: mgl64.Vec3{1, 0, 0},
		RestUp:        mgl64.Vec3{0, 1, 0},
		Cancels:       []string{"spine", "upper_arm.L"},
	},
	{
		Name:          "upper_arm.R",
		DirectionFrom: point(lmRightShoulder),
		DirectionTo:   point(lmRightElbow),
		UpFrom:        point(lmRightHip),
		UpTo:          point(lmRightShoulder),
		RestDirection: mgl64.Vec3{-1, 0, 0},
		RestUp:        mgl64.Vec3{0, 1, 0},
		Cancels:       []string{"spine"},
	},
	{
		Name:          "lower_arm.R",
		DirectionFrom: point(lmRightElbow),
		DirectionTo:   point(lmRightWrist),
		UpFrom:        point(lmRightHip),
		UpTo:          point(lmRightShoulder),
		RestDirection: mgl64.Vec3{-1, 0, 0},
		RestUp:        mgl64.Vec3{0, 1, 0},
		Cancels:       []string{"spine", "upper_arm.R"},
	},
	{
		Name:          "thigh.L",
		DirectionFrom: point(lmLeftHip),
		DirectionTo:   point(lmLeftKnee),
		UpFrom:        point(lmRightHip),
		UpTo:          point(lmLeftHip),
		RestDirection: mgl64.Vec3{0, -1, 0},
		RestUp:        mgl64.Vec3{1, 0, 0},
	},
	{
		Name:          "shin.L",
		DirectionFrom: point(lmLeftKnee),
		DirectionTo:   point(lmLeftAnkle),
		UpFrom:        point(lmRightHip),
		UpTo:          point(lmLeftHip),
		RestDirection: mgl64.Vec3{0, -1, 0},
		RestUp:        mgl64.Vec3{1, 0, 0},
		Cancels:       []string{"thigh.L"},
	},
	{
		Name:          "thigh.R",
		DirectionFrom: point(lmRightHip),
		DirectionTo:   point(lmRightKnee),
		UpFrom:        point(lmRightHip),
		UpTo:          point(lmLeftHip),
		RestDirection: mgl64.Vec3{0, -1, 0},
		RestUp:        mgl64.Vec3{1, 0, 0},
	},
	{
		Name:          "shin.R",
		DirectionFrom: point(lmRightKnee),
		DirectionTo:   point(lmRightAnkle),
		UpFrom:        point(lmRightHip),
		UpTo:          point(lmLeftHip),
		RestDirection: mgl64.Vec3{0, -1, 0},
		RestUp:        mgl64.Vec3{1, 0, 0},
		Cancels:       []string{"thigh.R"},
	},
}

// BoneNames returns the bone set in evaluation order.
func BoneNames() []string {
	names := make([]string, len(boneConfigs))
	for i, cfg := range boneConfigs {
		names[i] = cfg.Name
	}
	return names
}
