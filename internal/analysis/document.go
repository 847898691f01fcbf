package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"motionforge/internal/fileutil"
	"motionforge/internal/mission"
)

// Media carries the source video properties read before frame analysis.
type Media struct {
	SourcePath      string  `json:"source_path"`
	FPS             float64 `json:"fps"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"duration_seconds"`
	FrameCount      int     `json:"frame_count"`
	HasAudio        bool    `json:"has_audio"`
}

// Document is the raw analysis output for one video: everything the mission
// builder needs except the speech and phoneme contributions.
type Document struct {
	Media             Media                        `json:"media"`
	CameraMotion      []mission.CameraMotionSample `json:"camera_motion"`
	Actors            map[string]mission.Actor     `json:"actors"`
	MaxActorsObserved int                          `json:"max_actors_observed"`
}

// SaveDocument writes the raw analysis document as JSON.
func SaveDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("analysis save: encode: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("analysis save: %w", err)
	}
	return nil
}

// LoadDocument reads a raw analysis document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("analysis load: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("analysis load: decode %s: %w", filepath.Base(path), err)
	}
	if doc.Actors == nil {
		doc.Actors = map[string]mission.Actor{}
	}
	return &doc, nil
}
