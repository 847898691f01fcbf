// Package textutil sanitizes user-supplied names for safe filesystem use.
// Video titles derived from source filenames flow into work directories and
// log output, so unsafe characters are stripped at intake.
package textutil
