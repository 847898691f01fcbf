// Package mission defines the exchange document between video analysis and
// rendering, its on-disk commit protocol, and its structural validator.
//
// A mission holds everything one rendered video derives from one source
// video: per-actor pose and mouth frames, per-frame camera motion, transcript
// and phoneme cues, and the source metadata. The file is committed with a
// write-then-rename followed by a ready marker; Load refuses to read a
// mission whose marker is absent, so a consumer can never observe a partial
// document.
package mission
