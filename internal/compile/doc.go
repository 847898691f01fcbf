// Package compile builds the mission document: it merges the raw analysis
// output with the transcript and phoneme contributions, detects the mission
// mode from audio presence, and applies the transcript rewrite.
package compile
