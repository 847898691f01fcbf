package mission

// Mode distinguishes how a mission's audio track was produced.
const (
	ModeDrama  = "DRAMA"
	ModeSilent = "SILENT"
)

// Mouth generation statuses. Fusion treats anything other than
// StatusGenerated as "no phoneme data".
const (
	StatusGenerated    = "generated"
	StatusFailed       = "failed"
	StatusNotGenerated = "not_generated"
)

// Mission is the exchange document between the analysis side and the
// retargeting side. It is immutable once written: analysis fully produces it,
// rendering fully consumes it, and nothing mutates it across that boundary.
type Mission struct {
	Metadata     Metadata             `json:"metadata"`
	CameraMotion []CameraMotionSample `json:"camera_motion"`
	Actors       map[string]Actor     `json:"actors"`
	Speech       Speech               `json:"speech"`
	Mouth        *Mouth               `json:"mouth,omitempty"`
}

// Metadata carries mission identity and the source video properties that the
// rendering side must reproduce.
type Metadata struct {
	MissionID         string  `json:"mission_id"`
	Mode              string  `json:"mode"`
	SourcePath        string  `json:"source_path"`
	FPS               float64 `json:"fps"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	DurationSeconds   float64 `json:"duration_seconds"`
	FrameCount        int     `json:"frame_count"`
	MaxActorsObserved int     `json:"max_actors_observed"`
	CreatedAt         string  `json:"created_at"`
}

// Landmark is one captured body point in normalized image space.
type Landmark struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// PoseFrame holds one actor's body landmarks for one source frame.
type PoseFrame struct {
	Frame     int        `json:"frame"`
	Landmarks []Landmark `json:"landmarks"`
}

// MouthFrame holds one actor's mouth-openness ratio for one source frame.
// Ratio is normalized against the running per-video maximum, in [0, 1].
type MouthFrame struct {
	Frame int     `json:"frame"`
	Ratio float64 `json:"ratio"`
}

// Actor is one spatially-ranked person. The key in Mission.Actors is the
// actor id: a small integer rank assigned per frame by anchor x-coordinate.
// The same id in two different frames is not guaranteed to be the same
// physical person. Pose and mouth frames are sparse: frames where the actor
// was not detected are simply absent, never padded.
type Actor struct {
	PoseFrames  []PoseFrame  `json:"pose_frames"`
	MouthFrames []MouthFrame `json:"mouth_frames"`
}

// CameraMotionSample is the per-frame aggregate optical-flow descriptor.
// Frame 0 is always a zero-motion sample. Motion is a coarse label
// (static/pan/tilt/zoom) derived from the vector; downstream consumers are
// free to ignore it and work from the raw vector.
type CameraMotionSample struct {
	Frame     int     `json:"frame"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Magnitude float64 `json:"magnitude"`
	Motion    string  `json:"motion"`
}

// Speech carries the transcript and its rewritten form.
type Speech struct {
	OriginalText   string          `json:"original_text"`
	RewrittenText  string          `json:"rewritten_text"`
	RewriteApplied bool            `json:"rewrite_applied"`
	Segments       []SpeechSegment `json:"segments,omitempty"`
}

// SpeechSegment is one timestamped transcript span.
type SpeechSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Mouth carries the phoneme-cue sequence and its generation status.
type Mouth struct {
	Status string `json:"status"`
	Cues   []Cue  `json:"cues,omitempty"`
}

// Cue is one phoneme interval. Value is the phoneme class letter (A..H, X
// for silence). A frame at timestamp t is driven by the cue whose
// [Start, End) interval contains t.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Value string  `json:"value"`
}

// PhonemeAvailable reports whether phoneme cues were successfully generated.
func (m *Mission) PhonemeAvailable() bool {
	return m.Mouth != nil && m.Mouth.Status == StatusGenerated && len(m.Mouth.Cues) > 0
}

// ActorIDs returns the actor ids present in the mission, sorted numerically
// where possible so "10" sorts after "9".
func (m *Mission) ActorIDs() []string {
	ids := make([]string, 0, len(m.Actors))
	for id := range m.Actors {
		ids = append(ids, id)
	}
	sortActorIDs(ids)
	return ids
}
