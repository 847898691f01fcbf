package mission

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"motionforge/internal/fileutil"
)

// ErrNotReady indicates a mission file exists but its ready marker does not,
// meaning the writer has not committed the document yet.
var ErrNotReady = errors.New("mission not marked ready")

// ReadyMarkerPath returns the commit marker location for a mission file.
func ReadyMarkerPath(missionPath string) string {
	return missionPath + ".ready"
}

// Write commits a mission to disk: the document is written atomically and
// then the ready marker is created. Readers that honor the marker never
// observe a partially written mission.
func Write(path string, m *Mission) error {
	if m == nil {
		return errors.New("nil mission")
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("mission write: encode: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("mission write: %w", err)
	}

	if err := os.WriteFile(ReadyMarkerPath(path), []byte("ready\n"), 0o644); err != nil {
		return fmt.Errorf("mission write: marker: %w", err)
	}
	return nil
}

// Load reads a committed mission. A missing ready marker returns ErrNotReady
// even when the mission file itself exists.
func Load(path string) (*Mission, error) {
	if _, err := os.Stat(ReadyMarkerPath(path)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotReady, path)
		}
		return nil, fmt.Errorf("mission load: marker: %w", err)
	}
	return Read(path)
}

// Read decodes a mission file without checking the ready marker. Intended for
// inspection tools; pipeline consumers use Load.
func Read(path string) (*Mission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mission read: %w", err)
	}
	var m Mission
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("mission read: decode %s: %w", filepath.Base(path), err)
	}
	if m.Actors == nil {
		m.Actors = map[string]Actor{}
	}
	return &m, nil
}

func sortActorIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		if errA == nil {
			return true
		}
		if errB == nil {
			return false
		}
		return ids[i] < ids[j]
	})
}
