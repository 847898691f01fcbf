// Package whisper wraps the whisper CLI as the speech-transcription
// collaborator. It is consumed as a whole-file function: one audio file in,
// a transcript with per-segment timestamps out.
package whisper
