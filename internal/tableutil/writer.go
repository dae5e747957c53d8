// Package tableutil builds the escape-aware tabwriters behind the summary
// and status tables.
package tableutil

import (
	"fmt"
	"io"
	"strings"

	"github.com/liggitt/tabwriter"
)

// New creates a tabwriter with update-repos's default spacing settings.
func New(out io.Writer, stripEscape bool) *tabwriter.Writer {
	var flags uint
	if stripEscape {
		flags = tabwriter.StripEscape
	}
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', flags)
}

// PrintHeaders writes a tab-separated header row unless disabled.
func PrintHeaders(w io.Writer, noHeaders bool, headers string) error {
	if noHeaders {
		return nil
	}
	_, err := fmt.Fprintln(w, headers)
	return err
}

// WriteRow writes one table row, joining cells with tabs.
func WriteRow(w io.Writer, cells ...string) error {
	_, err := fmt.Fprintln(w, strings.Join(cells, "\t"))
	return err
}
