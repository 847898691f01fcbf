package render_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"motionforge/internal/config"
	"motionforge/internal/mission"
	"motionforge/internal/render"
	"motionforge/internal/retarget"
	"motionforge/internal/variant"
)

func jobMission() *mission.Mission {
	return &mission.Mission{
		Metadata: mission.Metadata{
			MissionID:  "mission-render",
			Mode:       mission.ModeDrama,
			FPS:        60,
			FrameCount: 4,
		},
		CameraMotion: []mission.CameraMotionSample{
			{Frame: 0, Motion: "static"},
			{Frame: 1, VX: 1, Magnitude: 1, Motion: "pan"},
			{Frame: 2, VX: 1, Magnitude: 1, Motion: "pan"},
			{Frame: 3, VX: 1, Magnitude: 1, Motion: "pan"},
		},
		Actors: map[string]mission.Actor{
			"0": {MouthFrames: []mission.MouthFrame{
				{Frame: 0, Ratio: 0.1},
				{Frame: 1, Ratio: 0.5},
			}},
		},
	}
}

func jobTracks() map[string]*retarget.ArmatureTrack {
	return map[string]*retarget.ArmatureTrack{
		"0": {
			ActorID:   "0",
			AssetPath: "/assets/default.glb",
			Bones: []retarget.BoneTrack{
				{Bone: "spine", Keyframes: []retarget.Keyframe{
					{Frame: 0, Rotation: mgl64.QuatIdent()},
					{Frame: 2, Rotation: mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})},
				}},
			},
		},
	}
}

func TestComposeBuildsCompleteJob(t *testing.T) {
	cfg := config.Default().Render
	composer := render.NewComposer(cfg, nil)
	m := jobMission()
	v := variant.Derive(m, 0, config.Default().Variants)

	job, err := composer.Compose(m, jobTracks(), v)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if job.Scene.Width != cfg.Width || job.Scene.Height != cfg.Height || job.Scene.FPS != cfg.FPS {
		t.Fatalf("scene parameters not carried: %+v", job.Scene)
	}
	if job.LipSyncMode != "ratio" {
		t.Fatalf("expected ratio lipsync mode, got %q", job.LipSyncMode)
	}
	if len(job.Camera) != 4 {
		t.Fatalf("expected 4 camera transforms, got %d", len(job.Camera))
	}
	if len(job.Actors) != 1 || job.Actors[0].ActorID != "0" {
		t.Fatalf("unexpected actors: %+v", job.Actors)
	}
	if len(job.Mouth) != 4 {
		t.Fatalf("expected one mouth sample per frame, got %d", len(job.Mouth))
	}
	if job.Mouth[1].Value != 0.5 {
		t.Fatalf("mouth frame 1 = %v, want 0.5", job.Mouth[1].Value)
	}
	// Frames without a ratio sample drive neutral.
	if job.Mouth[3].Value != 0 {
		t.Fatalf("mouth frame 3 = %v, want 0", job.Mouth[3].Value)
	}
}

func TestComposeSerializesRotationsWFirst(t *testing.T) {
	composer := render.NewComposer(config.Default().Render, nil)
	m := jobMission()
	v := variant.Derive(m, 0, config.Default().Variants)

	job, err := composer.Compose(m, jobTracks(), v)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	quat := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})
	got := job.Actors[0].Bones[0].Keyframes[1].Rotation
	want := [4]float64{quat.W, quat.X(), quat.Y(), quat.Z()}
	if got != want {
		t.Fatalf("rotation order mismatch: got %v, want %v", got, want)
	}
}

func TestComposeZeroActorMission(t *testing.T) {
	composer := render.NewComposer(config.Default().Render, nil)
	m := jobMission()
	m.Actors = map[string]mission.Actor{}
	v := variant.Derive(m, 0, config.Default().Variants)

	job, err := composer.Compose(m, nil, v)
	if err != nil {
		t.Fatalf("Compose failed for empty mission: %v", err)
	}
	if len(job.Actors) != 0 {
		t.Fatalf("expected no actors, got %d", len(job.Actors))
	}
	if len(job.Mouth) != m.Metadata.FrameCount {
		t.Fatalf("mouth drive should still cover every frame")
	}
}

func TestComposeRejectsMissingTrack(t *testing.T) {
	composer := render.NewComposer(config.Default().Render, nil)
	m := jobMission()
	v := variant.Derive(m, 0, config.Default().Variants)

	if _, err := composer.Compose(m, map[string]*retarget.ArmatureTrack{}, v); err == nil {
		t.Fatal("expected error when an actor has no armature track")
	}
}

func TestWriteReadJobRoundTrip(t *testing.T) {
	composer := render.NewComposer(config.Default().Render, nil)
	m := jobMission()
	v := variant.Derive(m, 1, config.Default().Variants)

	job, err := composer.Compose(m, jobTracks(), v)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	path := render.JobPath(t.TempDir(), m.Metadata.MissionID, v.Index)
	if filepath.Base(path) != "mission-render_variant_01.job.json" {
		t.Fatalf("unexpected job name: %s", filepath.Base(path))
	}
	if err := render.WriteJob(job, path); err != nil {
		t.Fatalf("WriteJob failed: %v", err)
	}

	loaded, err := render.ReadJob(path)
	if err != nil {
		t.Fatalf("ReadJob failed: %v", err)
	}
	if !reflect.DeepEqual(job, loaded) {
		t.Fatalf("round trip mismatch:\nwrote %+v\nread  %+v", job, loaded)
	}
}
