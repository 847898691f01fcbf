// Package services defines shared utilities consumed by the workflow stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent queue statuses (failed vs review).
//
// Subpackages wrap each external collaborator (ffprobe, ffmpeg, whisper,
// rhubarb, blender) behind a testable command boundary.
package services
