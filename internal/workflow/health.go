package workflow

import (
	"context"

	"motionforge/internal/stage"
)

// Health reports the readiness of every configured stage handler.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, st := range m.stages {
		if st.handler == nil {
			checks = append(checks, stage.Unhealthy(st.name, "handler unavailable"))
			continue
		}
		checks = append(checks, st.handler.HealthCheck(ctx))
	}
	return checks
}
