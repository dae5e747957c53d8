// SPDX-License-Identifier: MIT

// Package termstyle provides the ANSI palette used by progress and table
// output.
package termstyle

import (
	"os"

	"github.com/liggitt/tabwriter"
)

const (
	Reset  = "\x1b[0m"
	Green  = "\x1b[32m"
	Yellow = "\x1b[33m"
	Red    = "\x1b[31m"
	Blue   = "\x1b[34m"

	// Semantic aliases used by progress/status output.
	Healthy = Green
	Warn    = Yellow
	Error   = Red
	Info    = Blue
)

// Enabled reports whether colored output should be produced on a stream.
// An explicit disable wins, then the NO_COLOR convention, then whether the
// stream is a terminal.
func Enabled(disabled, isTTY bool) bool {
	if disabled {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTTY
}

// Paint wraps a value in ANSI escapes for plain line output. Table cells
// go through Colorize instead so tabwriter can ignore the escape bytes.
func Paint(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	return color + value + Reset
}

// Colorize wraps a value in ANSI escapes when color output is enabled.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	// Hide ANSI sequences from tabwriter width calculations so columns align.
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}
