package config

const (
	defaultInputDir  = "~/.local/share/motionforge/input"
	defaultWorkDir   = "~/.local/share/motionforge/work"
	defaultAssetsDir = "~/.local/share/motionforge/assets"
	defaultOutputDir = "~/.local/share/motionforge/output"
	defaultLogDir    = "~/.local/share/motionforge/logs"

	defaultMaxActors        = 5
	defaultMinConfidence    = 0.5
	defaultUpperLipLandmark = 13
	defaultLowerLipLandmark = 14
	defaultAnchorLandmark   = 0

	defaultVisibilityThreshold = 0.5
	defaultSmoothingFactor     = 0.7

	defaultRenderWidth          = 1080
	defaultRenderHeight         = 1920
	defaultRenderFPS            = 60
	defaultCameraTranslateScale = 0.1
	defaultCameraZoomScale      = 0.01

	defaultVariantCount       = 1
	defaultNoiseBaseStrength  = 0.5
	defaultAudioOffsetSeconds = 0.01

	defaultWhisperModel       = "base"
	defaultBlenderScript      = "~/.local/share/motionforge/scripts/render_job.py"
	defaultToolTimeoutSeconds = 600

	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 60

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			WorkDir:   defaultWorkDir,
			AssetsDir: defaultAssetsDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Analysis: Analysis{
			MaxActors:              defaultMaxActors,
			MinDetectionConfidence: defaultMinConfidence,
			UpperLipLandmark:       defaultUpperLipLandmark,
			LowerLipLandmark:       defaultLowerLipLandmark,
			AnchorLandmark:         defaultAnchorLandmark,
		},
		Retarget: Retarget{
			VisibilityThreshold: defaultVisibilityThreshold,
			SmoothingFactor:     defaultSmoothingFactor,
		},
		Render: Render{
			Width:                defaultRenderWidth,
			Height:               defaultRenderHeight,
			FPS:                  defaultRenderFPS,
			MotionBlur:           true,
			Bloom:                true,
			CameraTranslateScale: defaultCameraTranslateScale,
			CameraZoomScale:      defaultCameraZoomScale,
		},
		Variants: Variants{
			Count:              defaultVariantCount,
			NoiseBaseStrength:  defaultNoiseBaseStrength,
			AudioOffsetSeconds: defaultAudioOffsetSeconds,
		},
		Tools: Tools{
			FFmpegBinary:   "ffmpeg",
			FFprobeBinary:  "ffprobe",
			DetectorBinary: "pose-scan",
			WhisperBinary:  "whisper",
			WhisperModel:   defaultWhisperModel,
			RhubarbBinary:  "rhubarb",
			BlenderBinary:  "blender",
			BlenderScript:  defaultBlenderScript,
			TimeoutSeconds: defaultToolTimeoutSeconds,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
