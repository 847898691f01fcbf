package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"motionforge/internal/queue"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// colorizeStatus wraps a queue status in the ANSI color that matches its
// severity. Terminal detection is the caller's responsibility.
func colorizeStatus(status queue.Status, colorize bool) string {
	if !colorize {
		return string(status)
	}
	color := ""
	switch {
	case status == queue.StatusCompleted:
		color = ansiGreen
	case status == queue.StatusFailed:
		color = ansiRed
	case status == queue.StatusReview:
		color = ansiYellow
	case status.IsProcessing():
		color = ansiBlue
	}
	if color == "" {
		return string(status)
	}
	return color + string(status) + ansiReset
}

func readyLabel(ready bool, colorize bool) string {
	if ready {
		if colorize {
			return ansiGreen + "OK" + ansiReset
		}
		return "OK"
	}
	if colorize {
		return ansiRed + "ERROR" + ansiReset
	}
	return "ERROR"
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
