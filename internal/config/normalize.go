package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.InputDir, err = expandPath(c.InputDir); err != nil {
		return err
	}
	if c.WorkDir, err = expandPath(c.WorkDir); err != nil {
		return err
	}
	if c.AssetsDir, err = expandPath(c.AssetsDir); err != nil {
		return err
	}
	if c.OutputDir, err = expandPath(c.OutputDir); err != nil {
		return err
	}
	if c.LogDir, err = expandPath(c.LogDir); err != nil {
		return err
	}
	if c.Tools.BlenderScript, err = expandPath(c.Tools.BlenderScript); err != nil {
		return err
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
