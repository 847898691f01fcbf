package stage

import (
	"motionforge/internal/mission"
	"motionforge/internal/services"
)

// LoadMission loads the committed mission document a downstream stage depends
// on. On failure it returns a services.ErrValidation suitable for stage
// Execute methods.
func LoadMission(path string) (*mission.Mission, error) {
	if path == "" {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "load mission",
			"Mission path missing; rerun compilation", nil)
	}
	m, err := mission.Load(path)
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "load mission",
			"Mission document missing or uncommitted; rerun compilation", err)
	}
	return m, nil
}
