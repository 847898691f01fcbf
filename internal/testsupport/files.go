package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteSourceVideo drops a stub clip at path so intake scans and manual
// queueing have a real file to stat. The payload is a repeating marker, not
// a decodable container; tests never run it through a real tool.
func WriteSourceVideo(t testing.TB, path string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	payload := bytes.Repeat([]byte("motionforge-stub-clip\n"), 64)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
