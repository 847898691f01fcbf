// Package rhubarb wraps the rhubarb lip-sync CLI, which derives phoneme
// mouth cues from a finished audio file. Generation failure is reported to
// the caller, which records the mission's mouth status as failed; fusion
// then falls back to the continuous ratio signal.
package rhubarb
