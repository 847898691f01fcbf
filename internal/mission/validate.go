package mission

import (
	"fmt"
	"strconv"
)

const bodyLandmarkCount = 33

// Report collects the outcome of a structural validation pass. Errors mean
// the mission must not be rendered; warnings flag suspicious but usable data.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the mission passed validation with no errors.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

func (r *Report) errf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a mission's structural integrity: metadata sanity, frame
// monotonicity, ratio and coordinate ranges, and cue ordering. An empty
// actors map is valid; a zero-actor video is data, not an error.
func Validate(m *Mission) Report {
	var report Report
	if m == nil {
		report.errf("mission is nil")
		return report
	}

	validateMetadata(m, &report)
	validateCameraMotion(m, &report)
	for _, id := range m.ActorIDs() {
		validateActor(id, m.Actors[id], m.Metadata.FrameCount, &report)
	}
	validateMouth(m.Mouth, &report)
	return report
}

func validateMetadata(m *Mission, r *Report) {
	meta := m.Metadata
	if meta.MissionID == "" {
		r.errf("metadata: mission_id is empty")
	}
	if meta.Mode != ModeDrama && meta.Mode != ModeSilent {
		r.errf("metadata: unknown mode %q", meta.Mode)
	}
	if meta.FPS <= 0 {
		r.errf("metadata: fps must be positive, got %v", meta.FPS)
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		r.errf("metadata: invalid resolution %dx%d", meta.Width, meta.Height)
	}
	if meta.FrameCount < 0 {
		r.errf("metadata: negative frame_count %d", meta.FrameCount)
	}

	maxObserved := 0
	for id := range m.Actors {
		rank, err := strconv.Atoi(id)
		if err != nil || rank < 0 {
			r.errf("actors: id %q is not a non-negative integer", id)
			continue
		}
		if rank+1 > maxObserved {
			maxObserved = rank + 1
		}
	}
	if meta.MaxActorsObserved != maxObserved {
		r.warnf("metadata: max_actors_observed is %d but actors imply %d", meta.MaxActorsObserved, maxObserved)
	}
}

func validateCameraMotion(m *Mission, r *Report) {
	for i, sample := range m.CameraMotion {
		if sample.Frame != i {
			r.errf("camera_motion[%d]: expected frame %d, got %d", i, i, sample.Frame)
			return
		}
		if sample.Magnitude < 0 {
			r.errf("camera_motion[%d]: negative magnitude %v", i, sample.Magnitude)
		}
	}
	if len(m.CameraMotion) > 0 {
		first := m.CameraMotion[0]
		if first.VX != 0 || first.VY != 0 || first.Magnitude != 0 {
			r.warnf("camera_motion[0]: first frame should be zero motion")
		}
	}
	if m.Metadata.FrameCount > 0 && len(m.CameraMotion) != m.Metadata.FrameCount {
		r.warnf("camera_motion: %d samples for %d frames", len(m.CameraMotion), m.Metadata.FrameCount)
	}
}

func validateActor(id string, actor Actor, frameCount int, r *Report) {
	prev := -1
	for i, pf := range actor.PoseFrames {
		if pf.Frame <= prev {
			r.errf("actor %s: pose_frames[%d] frame %d not increasing", id, i, pf.Frame)
			break
		}
		prev = pf.Frame
		if frameCount > 0 && pf.Frame >= frameCount {
			r.errf("actor %s: pose frame %d beyond frame_count %d", id, pf.Frame, frameCount)
		}
		if len(pf.Landmarks) != bodyLandmarkCount {
			r.warnf("actor %s: frame %d has %d body landmarks, expected %d", id, pf.Frame, len(pf.Landmarks), bodyLandmarkCount)
		}
		for _, lm := range pf.Landmarks {
			if lm.X < 0 || lm.X > 1 || lm.Y < 0 || lm.Y > 1 {
				r.warnf("actor %s: frame %d landmark %d outside image space (%.3f, %.3f)", id, pf.Frame, lm.ID, lm.X, lm.Y)
				break
			}
		}
	}

	prev = -1
	for i, mf := range actor.MouthFrames {
		if mf.Frame <= prev {
			r.errf("actor %s: mouth_frames[%d] frame %d not increasing", id, i, mf.Frame)
			break
		}
		prev = mf.Frame
		if mf.Ratio < 0 || mf.Ratio > 1 {
			r.errf("actor %s: mouth ratio %v at frame %d outside [0,1]", id, mf.Ratio, mf.Frame)
		}
	}
}

func validateMouth(mouth *Mouth, r *Report) {
	if mouth == nil {
		return
	}
	switch mouth.Status {
	case StatusGenerated, StatusFailed, StatusNotGenerated:
	default:
		r.errf("mouth: unknown status %q", mouth.Status)
	}
	if mouth.Status != StatusGenerated && len(mouth.Cues) > 0 {
		r.warnf("mouth: cues present despite status %q", mouth.Status)
	}
	prevEnd := 0.0
	for i, cue := range mouth.Cues {
		if cue.End < cue.Start {
			r.errf("mouth: cue %d ends before it starts (%v < %v)", i, cue.End, cue.Start)
		}
		if cue.Start < prevEnd {
			r.warnf("mouth: cue %d overlaps previous cue", i)
		}
		prevEnd = cue.End
	}
}
