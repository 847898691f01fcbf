package retarget_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"motionforge/internal/config"
	"motionforge/internal/mission"
	"motionforge/internal/retarget"
	"motionforge/internal/services"
)

// tPoseLandmarks is a front-facing T-pose matching the virtual skeleton's
// rest pose, in normalized image coordinates (y grows downward).
func tPoseLandmarks() []mission.Landmark {
	landmarks := make([]mission.Landmark, 33)
	for i := range landmarks {
		landmarks[i] = mission.Landmark{ID: i, X: 0.5, Y: 0.5, Visibility: 1}
	}
	set := func(id int, x, y float64) {
		landmarks[id] = mission.Landmark{ID: id, X: x, Y: y, Visibility: 1}
	}
	set(0, 0.5, 0.08)  // nose
	set(7, 0.55, 0.10) // ears
	set(8, 0.45, 0.10)
	set(11, 0.70, 0.30) // shoulders
	set(12, 0.30, 0.30)
	set(13, 0.85, 0.30) // elbows
	set(14, 0.15, 0.30)
	set(15, 1.00, 0.30) // wrists
	set(16, 0.00, 0.30)
	set(23, 0.65, 0.60) // hips
	set(24, 0.35, 0.60)
	set(25, 0.65, 0.80) // knees
	set(26, 0.35, 0.80)
	set(27, 0.65, 1.00) // ankles
	set(28, 0.35, 1.00)
	return landmarks
}

func missionWithActor(actorID string, frames ...mission.PoseFrame) *mission.Mission {
	return &mission.Mission{
		Metadata: mission.Metadata{MissionID: "m", Mode: mission.ModeSilent, FPS: 60},
		Actors:   map[string]mission.Actor{actorID: {PoseFrames: frames}},
	}
}

func assetsDirWithDefault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "default.glb"), []byte("glb"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return dir
}

func quatNearIdentity(q mgl64.Quat) bool {
	return math.Abs(math.Abs(q.W)-1) < 1e-6
}

func TestRetargetTPoseYieldsIdentityRotations(t *testing.T) {
	engine := retarget.NewEngine(config.Default().Retarget, nil)
	m := missionWithActor("0", mission.PoseFrame{Frame: 0, Landmarks: tPoseLandmarks()})

	track, err := engine.RetargetActor(m, "0", assetsDirWithDefault(t))
	if err != nil {
		t.Fatalf("RetargetActor failed: %v", err)
	}
	for _, bone := range track.Bones {
		if len(bone.Keyframes) != 1 {
			t.Fatalf("bone %s: expected 1 keyframe, got %d", bone.Bone, len(bone.Keyframes))
		}
		if !quatNearIdentity(bone.Keyframes[0].Rotation) {
			t.Errorf("bone %s: T-pose should be identity, got %+v", bone.Bone, bone.Keyframes[0].Rotation)
		}
	}
}

func TestRetargetOrderIndependentAcrossActors(t *testing.T) {
	engine := retarget.NewEngine(config.Default().Retarget, nil)
	assets := assetsDirWithDefault(t)

	landmarks := tPoseLandmarks()
	bent := tPoseLandmarks()
	bent[15] = mission.Landmark{ID: 15, X: 0.85, Y: 0.10, Visibility: 1} // raised wrist

	m := &mission.Mission{
		Metadata: mission.Metadata{MissionID: "m", Mode: mission.ModeSilent},
		Actors: map[string]mission.Actor{
			"0": {PoseFrames: []mission.PoseFrame{{Frame: 0, Landmarks: landmarks}}},
			"1": {PoseFrames: []mission.PoseFrame{{Frame: 0, Landmarks: bent}}},
		},
	}

	first0, err := engine.RetargetActor(m, "0", assets)
	if err != nil {
		t.Fatalf("retarget 0: %v", err)
	}
	first1, err := engine.RetargetActor(m, "1", assets)
	if err != nil {
		t.Fatalf("retarget 1: %v", err)
	}

	// Reverse order on a fresh engine.
	engine2 := retarget.NewEngine(config.Default().Retarget, nil)
	second1, err := engine2.RetargetActor(m, "1", assets)
	if err != nil {
		t.Fatalf("retarget 1 again: %v", err)
	}
	second0, err := engine2.RetargetActor(m, "0", assets)
	if err != nil {
		t.Fatalf("retarget 0 again: %v", err)
	}

	if !reflect.DeepEqual(first0, second0) || !reflect.DeepEqual(first1, second1) {
		t.Fatal("retargeting depends on actor order")
	}
}

func TestRetargetSkipsLowVisibilityLandmarks(t *testing.T) {
	engine := retarget.NewEngine(config.Default().Retarget, nil)

	occluded := tPoseLandmarks()
	occluded[15].Visibility = 0.1 // left wrist hidden

	m := missionWithActor("0",
		mission.PoseFrame{Frame: 0, Landmarks: tPoseLandmarks()},
		mission.PoseFrame{Frame: 1, Landmarks: occluded},
	)
	track, err := engine.RetargetActor(m, "0", assetsDirWithDefault(t))
	if err != nil {
		t.Fatalf("RetargetActor failed: %v", err)
	}

	var lowerArm *retarget.BoneTrack
	var spine *retarget.BoneTrack
	for i := range track.Bones {
		switch track.Bones[i].Bone {
		case "lower_arm.L":
			lowerArm = &track.Bones[i]
		case "spine":
			spine = &track.Bones[i]
		}
	}
	if lowerArm == nil || spine == nil {
		t.Fatal("expected lower_arm.L and spine tracks")
	}
	if len(lowerArm.Keyframes) != 1 || lowerArm.Keyframes[0].Frame != 0 {
		t.Fatalf("occluded wrist should skip frame 1: %#v", lowerArm.Keyframes)
	}
	if len(spine.Keyframes) != 2 {
		t.Fatalf("spine unaffected by wrist visibility, got %d keyframes", len(spine.Keyframes))
	}
}

func TestRetargetPreservesFrameGaps(t *testing.T) {
	engine := retarget.NewEngine(config.Default().Retarget, nil)
	m := missionWithActor("0",
		mission.PoseFrame{Frame: 0, Landmarks: tPoseLandmarks()},
		mission.PoseFrame{Frame: 5, Landmarks: tPoseLandmarks()},
	)
	track, err := engine.RetargetActor(m, "0", assetsDirWithDefault(t))
	if err != nil {
		t.Fatalf("RetargetActor failed: %v", err)
	}
	for _, bone := range track.Bones {
		if len(bone.Keyframes) != 2 {
			t.Fatalf("bone %s: expected keyframes only at detected frames, got %#v", bone.Bone, bone.Keyframes)
		}
		if bone.Keyframes[0].Frame != 0 || bone.Keyframes[1].Frame != 5 {
			t.Fatalf("bone %s: unexpected keyframe frames %d, %d", bone.Bone, bone.Keyframes[0].Frame, bone.Keyframes[1].Frame)
		}
	}
}

func TestResolveAssetPrefersPerActor(t *testing.T) {
	dir := assetsDirWithDefault(t)
	perActor := filepath.Join(dir, "actor_2.glb")
	if err := os.WriteFile(perActor, []byte("glb"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	got, err := retarget.ResolveAsset(dir, "2")
	if err != nil {
		t.Fatalf("ResolveAsset failed: %v", err)
	}
	if got != perActor {
		t.Fatalf("expected per-actor asset, got %s", got)
	}
}

func TestResolveAssetFallsBackToDefault(t *testing.T) {
	dir := assetsDirWithDefault(t)
	got, err := retarget.ResolveAsset(dir, "3")
	if err != nil {
		t.Fatalf("ResolveAsset failed: %v", err)
	}
	if filepath.Base(got) != "default.glb" {
		t.Fatalf("expected default asset, got %s", got)
	}
}

func TestResolveAssetFatalWhenBothMissing(t *testing.T) {
	_, err := retarget.ResolveAsset(t.TempDir(), "3")
	if err == nil {
		t.Fatal("expected error when no assets exist")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
