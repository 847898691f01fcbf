// Package ffmpeg wraps the ffmpeg CLI as the media muxing/encoding
// collaborator: audio extraction for the speech engines, loudness
// normalization, and the final composite of rendered video, offset-adjusted
// audio, deterministic noise, and the overlay asset.
package ffmpeg
