package retarget

import (
	"fmt"
	"os"
	"path/filepath"

	"motionforge/internal/services"
)

// DefaultAssetName is the shared skeleton used when no per-actor asset
// exists.
const DefaultAssetName = "default.glb"

// ResolveAsset finds the skeleton asset for an actor: actor_<id>.glb when
// present, otherwise the shared default. Absence of both is fatal for the
// render job; there is no partial render.
func ResolveAsset(assetsDir, actorID string) (string, error) {
	perActor := filepath.Join(assetsDir, fmt.Sprintf("actor_%s.glb", actorID))
	if fileExists(perActor) {
		return perActor, nil
	}
	fallback := filepath.Join(assetsDir, DefaultAssetName)
	if fileExists(fallback) {
		return fallback, nil
	}
	return "", services.Wrap(services.ErrNotFound, "retarget", "resolve-asset",
		fmt.Sprintf("no skeleton asset for actor %s and no %s in %s", actorID, DefaultAssetName, assetsDir), nil)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
