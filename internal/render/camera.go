package render

import (
	"motionforge/internal/config"
	"motionforge/internal/mission"
)

// CameraTransform is the scene camera's offset from its base placement at one
// frame. TX/TY carry accumulated pan and tilt, TZ accumulated zoom depth.
type CameraTransform struct {
	Frame int     `json:"frame"`
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
	TZ    float64 `json:"tz"`
}

// IntegrateCamera turns per-frame flow velocities into a cumulative camera
// path. Each sample's mean vector moves the camera in the image plane and its
// magnitude pushes the depth axis, all scaled by the variant's intensity
// multiplier. The motion is a pure integral of the source footage, so the
// same mission and intensity always produce the same path.
func IntegrateCamera(samples []mission.CameraMotionSample, cfg config.Render, intensity float64) []CameraTransform {
	transforms := make([]CameraTransform, 0, len(samples))

	var cumX, cumY, cumZ float64
	for _, s := range samples {
		cumX += s.VX * intensity * cfg.CameraTranslateScale
		cumY += s.VY * intensity * cfg.CameraTranslateScale
		cumZ += s.Magnitude * intensity * cfg.CameraZoomScale

		transforms = append(transforms, CameraTransform{
			Frame: s.Frame,
			TX:    cumX,
			TY:    cumY,
			TZ:    cumZ,
		})
	}
	return transforms
}
