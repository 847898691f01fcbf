package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateRetarget(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateVariants(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.MaxActors < 1 {
		return errors.New("analysis.max_actors must be at least 1")
	}
	if c.Analysis.MinDetectionConfidence < 0 || c.Analysis.MinDetectionConfidence > 1 {
		return errors.New("analysis.min_detection_confidence must be between 0 and 1")
	}
	if c.Analysis.UpperLipLandmark < 0 || c.Analysis.LowerLipLandmark < 0 {
		return errors.New("analysis lip landmark indices must be non-negative")
	}
	if c.Analysis.UpperLipLandmark == c.Analysis.LowerLipLandmark {
		return errors.New("analysis upper and lower lip landmarks must differ")
	}
	return nil
}

func (c *Config) validateRetarget() error {
	if c.Retarget.VisibilityThreshold < 0 || c.Retarget.VisibilityThreshold > 1 {
		return errors.New("retarget.visibility_threshold must be between 0 and 1")
	}
	if c.Retarget.SmoothingFactor <= 0 || c.Retarget.SmoothingFactor > 1 {
		return errors.New("retarget.smoothing_factor must be in (0, 1]")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render resolution %dx%d is invalid", c.Render.Width, c.Render.Height)
	}
	if c.Render.FPS <= 0 {
		return errors.New("render.fps must be positive")
	}
	return nil
}

func (c *Config) validateVariants() error {
	if c.Variants.Count < 1 {
		return errors.New("variants.count must be at least 1")
	}
	if c.Variants.NoiseBaseStrength < 0 {
		return errors.New("variants.noise_base_strength must be non-negative")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval < 1 {
		return errors.New("workflow.queue_poll_interval must be at least 1 second")
	}
	if c.Workflow.ErrorRetryInterval < 1 {
		return errors.New("workflow.error_retry_interval must be at least 1 second")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
