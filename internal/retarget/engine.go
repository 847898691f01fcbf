package retarget

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"motionforge/internal/config"
	"motionforge/internal/logging"
	"motionforge/internal/mission"
)

// Keyframe is one bone rotation at one source frame.
type Keyframe struct {
	Frame    int
	Rotation mgl64.Quat
}

// BoneTrack holds one bone's keyframes in increasing frame order. Frames
// where the bone's landmarks were missing or below the visibility threshold
// carry no keyframe; the rendering engine's interpolation fills the gap.
type BoneTrack struct {
	Bone      string
	Keyframes []Keyframe
}

// ArmatureTrack is the retargeting output for one actor: the resolved
// skeleton asset plus one track per bone in the fixed bone set.
type ArmatureTrack struct {
	ActorID   string
	AssetPath string
	Bones     []BoneTrack
}

// Engine converts captured landmark motion into bone-rotation keyframes for
// a virtual skeleton. It holds no per-run state: retargeting two actors in
// either order produces identical tracks for each.
type Engine struct {
	cfg    config.Retarget
	logger *slog.Logger
}

// NewEngine constructs a retargeting engine.
func NewEngine(cfg config.Retarget, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// RetargetActor produces the armature track for one actor. assetsDir is
// searched per the fallback ladder in ResolveAsset.
func (e *Engine) RetargetActor(m *mission.Mission, actorID, assetsDir string) (*ArmatureTrack, error) {
	actor, ok := m.Actors[actorID]
	if !ok {
		return nil, fmt.Errorf("retarget: actor %q not in mission", actorID)
	}
	assetPath, err := ResolveAsset(assetsDir, actorID)
	if err != nil {
		return nil, err
	}

	track := &ArmatureTrack{
		ActorID:   actorID,
		AssetPath: assetPath,
		Bones:     make([]BoneTrack, len(boneConfigs)),
	}
	// Local rotations already written this frame, for parent cancellation.
	frameRotations := make(map[string]mgl64.Quat, len(boneConfigs))
	// Previous keyframe per bone, for smoothing across frames.
	previous := make(map[string]mgl64.Quat, len(boneConfigs))

	for i, cfg := range boneConfigs {
		track.Bones[i].Bone = cfg.Name
	}

	for _, poseFrame := range actor.PoseFrames {
		clear(frameRotations)
		for i, cfg := range boneConfigs {
			rotation, ok := e.solveBone(cfg, poseFrame.Landmarks, frameRotations)
			if !ok {
				continue
			}
			if prev, seen := previous[cfg.Name]; seen && e.cfg.SmoothingFactor < 1 {
				rotation = mgl64.QuatSlerp(prev, rotation, e.cfg.SmoothingFactor)
			}
			frameRotations[cfg.Name] = rotation
			previous[cfg.Name] = rotation
			track.Bones[i].Keyframes = append(track.Bones[i].Keyframes, Keyframe{
				Frame:    poseFrame.Frame,
				Rotation: rotation,
			})
		}
	}

	e.logger.Info("actor retargeted",
		logging.String("actor_id", actorID),
		logging.String("asset", assetPath),
		logging.Int("frames", len(actor.PoseFrames)),
	)
	return track, nil
}

// RetargetAll retargets every actor in the mission. Actors are independent;
// the result does not depend on iteration order.
func (e *Engine) RetargetAll(m *mission.Mission, assetsDir string) (map[string]*ArmatureTrack, error) {
	tracks := make(map[string]*ArmatureTrack, len(m.Actors))
	for _, actorID := range m.ActorIDs() {
		track, err := e.RetargetActor(m, actorID, assetsDir)
		if err != nil {
			return nil, err
		}
		tracks[actorID] = track
	}
	return tracks, nil
}

// solveBone computes one bone's local rotation for one frame. It returns
// false when a required landmark is absent or below the visibility
// threshold, leaving the frame without a keyframe.
func (e *Engine) solveBone(cfg boneConfig, landmarks []mission.Landmark, frameRotations map[string]mgl64.Quat) (mgl64.Quat, bool) {
	for _, an := range []anchor{cfg.DirectionFrom, cfg.DirectionTo, cfg.UpFrom, cfg.UpTo} {
		for _, id := range an.landmarks() {
			if id >= len(landmarks) {
				return mgl64.Quat{}, false
			}
			if landmarks[id].Visibility < e.cfg.VisibilityThreshold {
				return mgl64.Quat{}, false
			}
		}
	}
	for _, parent := range cfg.Cancels {
		if _, ok := frameRotations[parent]; !ok {
			return mgl64.Quat{}, false
		}
	}

	motionDir := resolveAnchor(landmarks, cfg.DirectionTo).Sub(resolveAnchor(landmarks, cfg.DirectionFrom))
	motionUp := resolveAnchor(landmarks, cfg.UpTo).Sub(resolveAnchor(landmarks, cfg.UpFrom))
	if motionDir.Len() == 0 || motionUp.Len() == 0 {
		return mgl64.Quat{}, false
	}

	motionQuat, ok := quatFromDirection(motionDir.Normalize(), motionUp.Normalize())
	if !ok {
		return mgl64.Quat{}, false
	}
	restQuat, ok := quatFromDirection(cfg.RestDirection, cfg.RestUp)
	if !ok {
		return mgl64.Quat{}, false
	}

	cancel := mgl64.QuatIdent()
	for _, parent := range cfg.Cancels {
		cancel = cancel.Mul(frameRotations[parent])
	}

	rotation := cancel.Inverse().Mul(motionQuat).Mul(restQuat.Inverse()).Normalize()
	return rotation, true
}

// resolveAnchor maps an anchor into skeleton space. Image space has y down
// and z toward the camera; the skeleton uses y up.
func resolveAnchor(landmarks []mission.Landmark, an anchor) mgl64.Vec3 {
	p := toSkeletonSpace(landmarks[an.a])
	if an.b >= 0 {
		q := toSkeletonSpace(landmarks[an.b])
		p = p.Add(q).Mul(0.5)
	}
	return p
}

func toSkeletonSpace(lm mission.Landmark) mgl64.Vec3 {
	return mgl64.Vec3{lm.X, -lm.Y, -lm.Z}
}

// quatFromDirection builds the rotation carrying the identity basis onto the
// orthonormal basis spanned by direction and up. Returns false when the two
// vectors are parallel and no roll can be fixed.
func quatFromDirection(direction, up mgl64.Vec3) (mgl64.Quat, bool) {
	cross := up.Cross(direction)
	if cross.Len() < 1e-9 {
		return mgl64.Quat{}, false
	}
	cross = cross.Normalize()
	orthoUp := direction.Cross(cross)

	basis := mgl64.Mat3FromCols(cross, orthoUp, direction)
	quat := mgl64.Mat4ToQuat(basis.Mat4())
	if math.IsNaN(quat.W) {
		return mgl64.Quat{}, false
	}
	return quat.Normalize(), true
}
