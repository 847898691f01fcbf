package analysis

import (
	"sort"
	"strconv"

	"motionforge/internal/detect"
)

// Assignment maps actor ids to detector output indices for a single frame.
// Ids are only comparable within that frame; two frames can assign the same
// id to different physical people.
type Assignment map[string]int

// IdentityResolver assigns per-frame actor ids to detected people. The
// default is spatial ranking; a cross-frame tracker can be substituted
// without touching the mission schema.
type IdentityResolver interface {
	Resolve(frame detect.Frame) Assignment
}

// RankResolver ranks detections left to right by the anchor landmark's
// x-coordinate: the leftmost person is always actor "0". There is no
// cross-frame state, so two people crossing paths swap ids. Frames with more
// detections than maxActors keep the most confident ones, breaking ties by
// detection order, before ranking.
type RankResolver struct {
	maxActors     int
	anchorIndex   int
	minConfidence float64
}

// NewRankResolver constructs the default resolver.
func NewRankResolver(maxActors, anchorIndex int, minConfidence float64) *RankResolver {
	if maxActors < 1 {
		maxActors = 1
	}
	return &RankResolver{
		maxActors:     maxActors,
		anchorIndex:   anchorIndex,
		minConfidence: minConfidence,
	}
}

type candidate struct {
	index      int
	anchorX    float64
	confidence float64
}

// Resolve implements IdentityResolver.
func (r *RankResolver) Resolve(frame detect.Frame) Assignment {
	count := frame.PersonCount()
	candidates := make([]candidate, 0, count)
	for i := 0; i < count; i++ {
		pose := frame.Poses[i]
		if len(pose.Landmarks) <= r.anchorIndex {
			continue
		}
		conf := pose.Confidence
		if conf < r.minConfidence {
			continue
		}
		candidates = append(candidates, candidate{
			index:      i,
			anchorX:    pose.Landmarks[r.anchorIndex].X,
			confidence: conf,
		})
	}
	if len(candidates) == 0 {
		return Assignment{}
	}

	if len(candidates) > r.maxActors {
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].confidence != candidates[j].confidence {
				return candidates[i].confidence > candidates[j].confidence
			}
			return candidates[i].index < candidates[j].index
		})
		candidates = candidates[:r.maxActors]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].anchorX != candidates[j].anchorX {
			return candidates[i].anchorX < candidates[j].anchorX
		}
		return candidates[i].index < candidates[j].index
	})

	assignment := make(Assignment, len(candidates))
	for rank, c := range candidates {
		assignment[strconv.Itoa(rank)] = c.index
	}
	return assignment
}
