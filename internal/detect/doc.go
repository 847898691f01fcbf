// Package detect wraps the external landmark detector and defines the
// per-frame detection types the analysis stage consumes.
//
// The detector binary tracks face and body landmarks per person and samples
// dense optical flow between consecutive frames, emitting one JSON object per
// frame to a JSONL sidecar. This package runs the binary, validates frame
// ordering, and decodes the sidecar.
package detect
