package analysis

import (
	"errors"
	"log/slog"
	"sort"
	"strconv"

	"motionforge/internal/config"
	"motionforge/internal/detect"
	"motionforge/internal/logging"
	"motionforge/internal/mission"
)

// Scanner walks a video's per-frame detections and accumulates the raw
// analysis document: resolved actor identities, normalized pose landmarks,
// mouth-openness ratios, and per-frame camera motion.
type Scanner struct {
	resolver IdentityResolver
	cfg      config.Analysis
	logger   *slog.Logger
}

// NewScanner builds a scanner with the default rank resolver.
func NewScanner(cfg config.Analysis, logger *slog.Logger) *Scanner {
	return NewScannerWithResolver(
		cfg,
		NewRankResolver(cfg.MaxActors, cfg.AnchorLandmark, cfg.MinDetectionConfidence),
		logger,
	)
}

// NewScannerWithResolver allows substituting the identity resolver.
func NewScannerWithResolver(cfg config.Analysis, resolver IdentityResolver, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{resolver: resolver, cfg: cfg, logger: logger}
}

// Scan produces the raw analysis document for one video. A video in which no
// frame contains a detectable person yields an empty actors map, which is
// valid output, not an error. Pose and mouth sequences stay sparse: frames
// where an actor id was not assigned are absent.
func (s *Scanner) Scan(media Media, frames []detect.Frame) (*Document, error) {
	if len(frames) == 0 {
		return nil, errors.New("analysis: no frames to scan")
	}

	doc := &Document{
		Media:        media,
		CameraMotion: make([]mission.CameraMotionSample, 0, len(frames)),
		Actors:       map[string]mission.Actor{},
	}
	mouth := NewMouthTracker(s.cfg.UpperLipLandmark, s.cfg.LowerLipLandmark)

	for _, frame := range frames {
		doc.CameraMotion = append(doc.CameraMotion, EstimateCameraSample(frame.Index, frame.Flow))

		assignment := s.resolver.Resolve(frame)
		if len(assignment) > doc.MaxActorsObserved {
			doc.MaxActorsObserved = len(assignment)
		}
		// The mouth tracker's running max depends on the order gaps are
		// observed, so actors must be visited in a fixed order within the
		// frame.
		for _, actorID := range sortedActorIDs(assignment) {
			personIdx := assignment[actorID]
			actor := doc.Actors[actorID]
			actor.PoseFrames = append(actor.PoseFrames, normalizePose(frame.Index, frame.Poses[personIdx]))
			if personIdx < len(frame.Faces) {
				if ratio, ok := mouth.Ratio(frame.Faces[personIdx]); ok {
					actor.MouthFrames = append(actor.MouthFrames, mission.MouthFrame{
						Frame: frame.Index,
						Ratio: ratio,
					})
				}
			}
			doc.Actors[actorID] = actor
		}
	}

	s.logger.Info("analysis scan complete",
		logging.Int("frames", len(frames)),
		logging.Int("actors", doc.MaxActorsObserved),
	)
	return doc, nil
}

// sortedActorIDs returns the assignment's actor ids in a stable order,
// numeric ids first in numeric order, then any other ids lexically.
func sortedActorIDs(assignment Assignment) []string {
	ids := make([]string, 0, len(assignment))
	for id := range assignment {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}

// normalizePose packages one detected pose into the mission landmark
// records. Landmark ids follow the detector's fixed body vocabulary.
func normalizePose(frameIndex int, pose detect.Pose) mission.PoseFrame {
	landmarks := make([]mission.Landmark, len(pose.Landmarks))
	for i, lm := range pose.Landmarks {
		landmarks[i] = mission.Landmark{
			ID:         i,
			X:          lm.X,
			Y:          lm.Y,
			Z:          lm.Z,
			Visibility: lm.Visibility,
		}
	}
	return mission.PoseFrame{Frame: frameIndex, Landmarks: landmarks}
}
