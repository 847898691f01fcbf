// Package analysis turns per-frame detector output into the raw analysis
// document: spatially ranked actor identities, normalized pose landmarks,
// per-video-normalized mouth-openness ratios, and aggregate camera motion.
package analysis
