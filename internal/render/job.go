package render

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"motionforge/internal/config"
	"motionforge/internal/fileutil"
	"motionforge/internal/lipsync"
	"motionforge/internal/logging"
	"motionforge/internal/mission"
	"motionforge/internal/retarget"
	"motionforge/internal/variant"
)

// Engine runs one render job to completion. The blender service satisfies
// this; tests substitute a stub.
type Engine interface {
	Render(ctx context.Context, jobPath, outputPath string) error
}

// Scene holds the output scene parameters shared by every variant.
type Scene struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	FPS        int  `json:"fps"`
	MotionBlur bool `json:"motion_blur"`
	Bloom      bool `json:"bloom"`
}

// JobKeyframe is one serialized bone rotation. Rotation is [w, x, y, z].
type JobKeyframe struct {
	Frame    int        `json:"frame"`
	Rotation [4]float64 `json:"rotation"`
}

// JobBone is one bone's keyframe sequence in increasing frame order.
type JobBone struct {
	Bone      string        `json:"bone"`
	Keyframes []JobKeyframe `json:"keyframes"`
}

// JobActor is one actor's skeleton asset and armature animation.
type JobActor struct {
	ActorID   string    `json:"actor_id"`
	AssetPath string    `json:"asset_path"`
	Bones     []JobBone `json:"bones"`
}

// MouthSample is the mouth drive value for one frame.
type MouthSample struct {
	Frame int     `json:"frame"`
	Value float64 `json:"value"`
}

// Job is the complete document handed to the rendering engine for one
// variant: scene parameters, the camera path, every actor's armature
// animation, and the per-frame mouth drive.
type Job struct {
	MissionID   string                `json:"mission_id"`
	Variant     variant.RenderVariant `json:"variant"`
	Scene       Scene                 `json:"scene"`
	FrameCount  int                   `json:"frame_count"`
	LipSyncMode string                `json:"lipsync_mode"`
	Camera      []CameraTransform     `json:"camera"`
	Actors      []JobActor            `json:"actors"`
	Mouth       []MouthSample         `json:"mouth"`
}

// Composer assembles render jobs from a mission, its retargeted armature
// tracks, and a variant descriptor.
type Composer struct {
	cfg    config.Render
	logger *slog.Logger
}

// NewComposer constructs a render job composer.
func NewComposer(cfg config.Render, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Composer{cfg: cfg, logger: logger}
}

// Compose builds the job document for one variant. Actors appear in mission
// id order so the document is byte-stable for a given input. A mission with
// zero actors composes a valid job with an empty actor list.
func (c *Composer) Compose(m *mission.Mission, tracks map[string]*retarget.ArmatureTrack, v variant.RenderVariant) (*Job, error) {
	if m == nil {
		return nil, fmt.Errorf("render: nil mission")
	}

	fusion := lipsync.New(m)
	job := &Job{
		MissionID: m.Metadata.MissionID,
		Variant:   v,
		Scene: Scene{
			Width:      c.cfg.Width,
			Height:     c.cfg.Height,
			FPS:        c.cfg.FPS,
			MotionBlur: c.cfg.MotionBlur,
			Bloom:      c.cfg.Bloom,
		},
		FrameCount:  m.Metadata.FrameCount,
		LipSyncMode: fusion.Mode().String(),
		Camera:      IntegrateCamera(m.CameraMotion, c.cfg, v.CameraIntensity),
	}

	for _, actorID := range m.ActorIDs() {
		track, ok := tracks[actorID]
		if !ok {
			return nil, fmt.Errorf("render: no armature track for actor %q", actorID)
		}
		job.Actors = append(job.Actors, serializeTrack(track))
	}

	job.Mouth = make([]MouthSample, 0, m.Metadata.FrameCount)
	for frame := 0; frame < m.Metadata.FrameCount; frame++ {
		job.Mouth = append(job.Mouth, MouthSample{Frame: frame, Value: fusion.Drive(frame)})
	}

	c.logger.Info("render job composed",
		logging.String("mission_id", m.Metadata.MissionID),
		logging.Int("variant", v.Index),
		logging.String("lipsync_mode", job.LipSyncMode),
		logging.Int("actors", len(job.Actors)),
	)
	return job, nil
}

func serializeTrack(track *retarget.ArmatureTrack) JobActor {
	actor := JobActor{
		ActorID:   track.ActorID,
		AssetPath: track.AssetPath,
		Bones:     make([]JobBone, len(track.Bones)),
	}
	for i, bone := range track.Bones {
		actor.Bones[i].Bone = bone.Bone
		for _, kf := range bone.Keyframes {
			actor.Bones[i].Keyframes = append(actor.Bones[i].Keyframes, JobKeyframe{
				Frame:    kf.Frame,
				Rotation: [4]float64{kf.Rotation.W, kf.Rotation.X(), kf.Rotation.Y(), kf.Rotation.Z()},
			})
		}
	}
	return actor
}

// JobPath names the job document for one variant under the work directory.
func JobPath(workDir, missionID string, index int) string {
	return filepath.Join(workDir, fmt.Sprintf("%s_variant_%02d.job.json", missionID, index))
}

// WriteJob commits a job document to disk. Like the mission document it is
// written atomically so a consumer never observes a partial job.
func WriteJob(job *Job, path string) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("render: encode job: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("render: write job: %w", err)
	}
	return nil
}

// ReadJob loads a committed job document.
func ReadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("render: read job: %w", err)
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("render: parse job %s: %w", path, err)
	}
	return &job, nil
}
