// Package ffprobe wraps the ffprobe CLI for container inspection.
//
// The analyzer uses it to read source video metadata (frame rate, frame
// count, duration, audio stream presence) before frame analysis starts.
package ffprobe
