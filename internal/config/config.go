package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration. Every pipeline artifact lives under
// one of these roots.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	WorkDir   string `toml:"work_dir"`
	AssetsDir string `toml:"assets_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Analysis contains configuration for the motion extraction pass.
type Analysis struct {
	// MaxActors caps the number of bodies kept per frame. Detections beyond
	// the cap are dropped by confidence, then by detection order.
	MaxActors int `toml:"max_actors"`
	// MinDetectionConfidence filters detector output before ranking.
	MinDetectionConfidence float64 `toml:"min_detection_confidence"`
	// UpperLipLandmark and LowerLipLandmark are the face-mesh indices used
	// for the mouth-openness ratio (inner-lip centers, not corners).
	UpperLipLandmark int `toml:"upper_lip_landmark"`
	LowerLipLandmark int `toml:"lower_lip_landmark"`
	// AnchorLandmark is the body landmark whose x-coordinate orders actors
	// left to right (0 = nose).
	AnchorLandmark int `toml:"anchor_landmark"`
}

// Retarget contains configuration for skeletal retargeting.
type Retarget struct {
	// VisibilityThreshold skips landmarks the detector marked occluded.
	VisibilityThreshold float64 `toml:"visibility_threshold"`
	// SmoothingFactor blends consecutive bone rotations (1.0 disables).
	SmoothingFactor float64 `toml:"smoothing_factor"`
}

// Render contains output scene parameters.
type Render struct {
	Width      int  `toml:"width"`
	Height     int  `toml:"height"`
	FPS        int  `toml:"fps"`
	MotionBlur bool `toml:"motion_blur"`
	Bloom      bool `toml:"bloom"`
	// CameraTranslateScale and CameraZoomScale map flow units to scene units.
	CameraTranslateScale float64 `toml:"camera_translate_scale"`
	CameraZoomScale      float64 `toml:"camera_zoom_scale"`
}

// Variants contains configuration for deterministic export variation.
type Variants struct {
	Count              int     `toml:"count"`
	NoiseBaseStrength  float64 `toml:"noise_base_strength"`
	AudioOffsetSeconds float64 `toml:"audio_offset_seconds"`
	OverlayAsset       string  `toml:"overlay_asset"`
}

// Tools contains the external collaborator binaries.
type Tools struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	DetectorBinary string `toml:"detector_binary"`
	WhisperBinary  string `toml:"whisper_binary"`
	WhisperModel   string `toml:"whisper_model"`
	RhubarbBinary  string `toml:"rhubarb_binary"`
	BlenderBinary  string `toml:"blender_binary"`
	BlenderScript  string `toml:"blender_script"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow contains batch runner timing.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for motionforge.
//
// Configuration sections by subsystem:
//   - Paths: input/work/assets/output/log directories
//   - Analysis: detector limits and landmark indices
//   - Retarget: visibility cutoff and rotation smoothing
//   - Render: scene resolution, frame rate, effect toggles
//   - Variants: deterministic per-export variation
//   - Tools: external collaborator binaries
//   - Workflow: batch runner polling intervals
//   - Logging: log format and level
type Config struct {
	Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	Retarget Retarget `toml:"retarget"`
	Render   Render   `toml:"render"`
	Variants Variants `toml:"variants"`
	Tools    Tools    `toml:"tools"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/motionforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists at
// the resolved path, defaults are returned and exists is false.
func Load(path string) (cfg *Config, resolvedPath string, exists bool, err error) {
	value := Default()

	resolvedPath, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, openErr := os.Open(resolvedPath)
		if openErr != nil {
			return nil, "", false, fmt.Errorf("open config: %w", openErr)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if decodeErr := decoder.Decode(&value); decodeErr != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", decodeErr)
		}
	}

	if err = value.normalize(); err != nil {
		return nil, "", false, err
	}
	if err = value.Validate(); err != nil {
		return nil, "", false, err
	}

	return &value, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.InputDir, c.WorkDir, c.AssetsDir, c.OutputDir, c.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration to the given path without
// overwriting an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := ensureParentDir(expanded); err != nil {
		return err
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
