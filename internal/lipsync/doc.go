// Package lipsync selects the mouth drive signal for rendering: discrete
// phoneme cues when generation succeeded, the primary actor's continuous
// openness ratio otherwise, and a closed neutral default when neither
// exists. Selection never fails.
package lipsync
