package lipsync

import (
	"sort"

	"motionforge/internal/mission"
)

// Mode is the mouth drive source selected for a mission.
type Mode int

const (
	// Neutral keeps the mouth at the closed default.
	Neutral Mode = iota
	// PhonemeDriven samples the discrete phoneme cue sequence.
	PhonemeDriven
	// RatioDriven follows the primary actor's continuous openness ratio.
	RatioDriven
)

func (m Mode) String() string {
	switch m {
	case PhonemeDriven:
		return "phoneme"
	case RatioDriven:
		return "ratio"
	default:
		return "neutral"
	}
}

// NeutralValue is the closed-mouth drive value.
const NeutralValue = 0.0

// PrimaryActorID designates whose ratio signal drives the fallback path.
const PrimaryActorID = "0"

// phonemeShapes maps phoneme class letters to mouth-openness drive values.
// Letters without an entry (including silence "X") resolve to the neutral
// closed value.
var phonemeShapes = map[string]float64{
	"A": 0.1,
	"B": 0.4,
	"C": 0.7,
	"E": 0.9,
	"F": 0.2,
	"X": 0.0,
}

// Select is the pure selection function over the mission's phoneme status
// and the availability of the primary actor's ratio signal. It is evaluated
// once per mission, never per frame.
func Select(phonemeStatus string, phonemeCues int, ratioAvailable bool) Mode {
	if phonemeStatus == mission.StatusGenerated && phonemeCues > 0 {
		return PhonemeDriven
	}
	if ratioAvailable {
		return RatioDriven
	}
	return Neutral
}

// Fusion produces the per-frame mouth drive value for one mission. The
// source selection happens at construction; Drive never returns an error —
// any per-frame hole resolves to the neutral value.
type Fusion struct {
	mode   Mode
	fps    float64
	cues   []mission.Cue
	ratios map[int]float64
}

// New builds the fusion for a mission using the primary actor's ratio signal
// as the fallback source.
func New(m *mission.Mission) *Fusion {
	f := &Fusion{fps: m.Metadata.FPS, ratios: map[int]float64{}}

	status := mission.StatusNotGenerated
	cueCount := 0
	if m.Mouth != nil {
		status = m.Mouth.Status
		cueCount = len(m.Mouth.Cues)
	}
	primary := m.Actors[PrimaryActorID]

	f.mode = Select(status, cueCount, len(primary.MouthFrames) > 0)
	switch f.mode {
	case PhonemeDriven:
		f.cues = append(f.cues, m.Mouth.Cues...)
		sort.Slice(f.cues, func(i, j int) bool { return f.cues[i].Start < f.cues[j].Start })
		// cueAt bisects on End, which needs the intervals disjoint. The
		// generator emits them that way, but mission validation only warns
		// on overlap, so a later cue truncates its predecessor here.
		for i := 0; i+1 < len(f.cues); i++ {
			if f.cues[i].End > f.cues[i+1].Start {
				f.cues[i].End = f.cues[i+1].Start
			}
		}
	case RatioDriven:
		for _, mf := range primary.MouthFrames {
			f.ratios[mf.Frame] = mf.Ratio
		}
	}
	return f
}

// Mode reports the selected drive source.
func (f *Fusion) Mode() Mode {
	return f.mode
}

// Drive returns the mouth drive value for a frame.
func (f *Fusion) Drive(frame int) float64 {
	switch f.mode {
	case PhonemeDriven:
		if f.fps <= 0 {
			return NeutralValue
		}
		timestamp := float64(frame) / f.fps
		if cue, ok := f.cueAt(timestamp); ok {
			return phonemeShapes[cue.Value]
		}
		return NeutralValue
	case RatioDriven:
		if ratio, ok := f.ratios[frame]; ok {
			return ratio
		}
		return NeutralValue
	default:
		return NeutralValue
	}
}

// cueAt finds the cue whose [Start, End) interval contains the timestamp.
// The cues are sorted by Start and non-overlapping after construction, so
// End is monotone and the bisection is sound.
func (f *Fusion) cueAt(timestamp float64) (mission.Cue, bool) {
	idx := sort.Search(len(f.cues), func(i int) bool {
		return f.cues[i].End > timestamp
	})
	if idx < len(f.cues) && f.cues[idx].Start <= timestamp && timestamp < f.cues[idx].End {
		return f.cues[idx], true
	}
	return mission.Cue{}, false
}
