// Package render assembles per-variant render job documents for the
// rendering engine: an integrated camera path, serialized armature tracks,
// the per-frame mouth drive, and the variant's scene parameters.
package render
