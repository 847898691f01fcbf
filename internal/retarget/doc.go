// Package retarget maps captured landmark motion onto a virtual skeleton's
// bone rotations.
//
// Each bone derives its world orientation from a direction landmark pair and
// an up landmark pair, compares it against the skeleton's rest pose, and
// cancels the accumulated parent rotation so the stored keyframe is local.
// One keyframe is written per bone per detected frame; gaps are left for the
// rendering engine to interpolate.
package retarget
