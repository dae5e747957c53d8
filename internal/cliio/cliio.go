// Package cliio renders tabular command output.
package cliio

import (
	"io"

	"github.com/hammy-pdi-dev/update-repos/internal/tableutil"
)

// WriteTable renders a tab-separated table with optional headers. Cell
// values may carry tabwriter-escaped ANSI sequences; stripEscape controls
// whether the escape bytes are removed from the final output.
func WriteTable(out io.Writer, stripEscape bool, noHeaders bool, headers []string, rows [][]string) error {
	w := tableutil.New(out, stripEscape)
	if !noHeaders {
		if err := tableutil.WriteRow(w, headers...); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := tableutil.WriteRow(w, row...); err != nil {
			return err
		}
	}
	return w.Flush()
}
