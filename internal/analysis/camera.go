package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"motionforge/internal/detect"
	"motionforge/internal/mission"
)

// Motion labels attached to camera samples. Consumers are free to ignore
// them and work from the raw vector.
const (
	MotionStatic = "static"
	MotionPan    = "pan"
	MotionTilt   = "tilt"
	MotionZoom   = "zoom"
)

// staticMagnitude is the mean flow magnitude below which a frame counts as
// static. zoomDivergenceShare is the fraction of the mean magnitude that the
// radial flow component must exceed for the frame to classify as zoom.
const (
	staticMagnitude     = 0.05
	zoomDivergenceShare = 0.5
)

// EstimateCameraSample reduces a frame's dense optical flow to one aggregate
// motion vector plus a coarse label. Frame 0 has no prior frame and always
// yields a zero-motion sample.
func EstimateCameraSample(frameIndex int, flow detect.FlowStats) mission.CameraMotionSample {
	if frameIndex == 0 {
		return mission.CameraMotionSample{Frame: 0, Motion: MotionStatic}
	}

	vx, vy, magnitude := aggregateFlow(flow)
	return mission.CameraMotionSample{
		Frame:     frameIndex,
		VX:        vx,
		VY:        vy,
		Magnitude: magnitude,
		Motion:    classify(vx, vy, magnitude, flow.Vectors),
	}
}

// aggregateFlow prefers the sampled vectors; when the detector only reports
// summary statistics, the vector is reconstructed from magnitude and angle.
func aggregateFlow(flow detect.FlowStats) (vx, vy, magnitude float64) {
	if len(flow.Vectors) == 0 {
		vx = flow.MeanMagnitude * math.Cos(flow.MeanAngle)
		vy = flow.MeanMagnitude * math.Sin(flow.MeanAngle)
		return vx, vy, flow.MeanMagnitude
	}

	dxs := make([]float64, len(flow.Vectors))
	dys := make([]float64, len(flow.Vectors))
	mags := make([]float64, len(flow.Vectors))
	for i, v := range flow.Vectors {
		dxs[i] = v.DX
		dys[i] = v.DY
		mags[i] = math.Hypot(v.DX, v.DY)
	}
	return stat.Mean(dxs, nil), stat.Mean(dys, nil), stat.Mean(mags, nil)
}

// classify labels the dominant motion. Zoom shows up as flow diverging from
// (or converging on) the vector centroid rather than pointing one way, so the
// mean radial component is compared against the overall magnitude first.
func classify(vx, vy, magnitude float64, vectors []detect.FlowVector) string {
	if magnitude < staticMagnitude {
		return MotionStatic
	}
	if len(vectors) >= 4 {
		if div := math.Abs(radialComponent(vectors)); div > zoomDivergenceShare*magnitude {
			return MotionZoom
		}
	}
	if math.Abs(vx) >= math.Abs(vy) {
		return MotionPan
	}
	return MotionTilt
}

func radialComponent(vectors []detect.FlowVector) float64 {
	xs := make([]float64, len(vectors))
	ys := make([]float64, len(vectors))
	for i, v := range vectors {
		xs[i] = v.X
		ys[i] = v.Y
	}
	cx := stat.Mean(xs, nil)
	cy := stat.Mean(ys, nil)

	radial := make([]float64, 0, len(vectors))
	for _, v := range vectors {
		rx := v.X - cx
		ry := v.Y - cy
		norm := math.Hypot(rx, ry)
		if norm == 0 {
			continue
		}
		radial = append(radial, (v.DX*rx+v.DY*ry)/norm)
	}
	if len(radial) == 0 {
		return 0
	}
	return stat.Mean(radial, nil)
}
