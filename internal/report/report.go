// Package report renders the user-visible output of a sync run: the live
// per-repository progress lines, the end-of-run summary table, and the
// one-line footer.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hammy-pdi-dev/update-repos/internal/cliio"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
	"github.com/hammy-pdi-dev/update-repos/internal/sortutil"
	"github.com/hammy-pdi-dev/update-repos/internal/termstyle"
)

// Renderer writes run output. Progress lines and the footer go to Progress
// (conventionally stderr so tables stay pipeable); the summary table goes
// to Out.
type Renderer struct {
	Progress io.Writer
	Out      io.Writer
	// Color enables ANSI coloring of icons, status labels and dirty cells.
	Color bool
	// Verbose adds the summary table and per-repository messages.
	Verbose bool
}

// statusGlyph maps a status to its progress icon and color family.
func statusGlyph(s model.Status) (icon, color string) {
	switch s.Severity() {
	case model.SeverityOK:
		return "✓", termstyle.Healthy
	case model.SeverityWarn:
		return "!", termstyle.Warn
	case model.SeverityError:
		return "✗", termstyle.Error
	default:
		return "•", termstyle.Info
	}
}

// RepoLine writes one progress line as a repository completes. The
// signature matches engine.ProgressFunc so it can be passed straight to
// the coordinator.
func (r *Renderer) RepoLine(completed, total int, o model.SyncOutcome) {
	if r.Progress == nil {
		return
	}
	icon, color := statusGlyph(o.Status)
	fmt.Fprintf(r.Progress, "[%d/%d] %s (%s) %s %s\n",
		completed, total,
		o.Name, o.Branch,
		termstyle.Paint(r.Color, icon, color),
		termstyle.Paint(r.Color, o.Status.Label(), color),
	)
}

// Summary writes the end-of-run output: in verbose mode a table sorted by
// repository name plus any per-repository messages, then the footer in
// every mode.
func (r *Renderer) Summary(rep *model.RunReport) {
	if r.Verbose && r.Out != nil && len(rep.Outcomes) > 0 {
		r.writeTable(rep)
		r.writeMessages(rep)
	}
	r.writeFooter(rep)
}

// writeTable renders the sorted summary. The STATUS column is omitted when
// every outcome is in the ok family, so an all-green run stays compact.
func (r *Renderer) writeTable(rep *model.RunReport) {
	sorted := make([]model.SyncOutcome, len(rep.Outcomes))
	copy(sorted, rep.Outcomes)
	sortutil.SortOutcomes(sorted)

	withStatus := false
	for _, o := range sorted {
		if o.Status.Severity() != model.SeverityOK {
			withStatus = true
			break
		}
	}

	headers := []string{"REPO", "BRANCH", "DIRTY", "PULLED"}
	if withStatus {
		headers = append(headers, "STATUS")
	}
	rows := make([][]string, 0, len(sorted))
	for _, o := range sorted {
		row := []string{o.Name, o.Branch, r.dirtyCell(o.Dirty), string(o.Pulled)}
		if withStatus {
			_, color := statusGlyph(o.Status)
			row = append(row, termstyle.Colorize(r.Color, o.Status.Label(), color))
		}
		rows = append(rows, row)
	}
	_ = cliio.WriteTable(r.Out, true, false, headers, rows)
}

func (r *Renderer) dirtyCell(dirty bool) string {
	if dirty {
		return termstyle.Colorize(r.Color, "yes", termstyle.Warn)
	}
	return termstyle.Colorize(r.Color, "no", termstyle.Healthy)
}

func (r *Renderer) writeMessages(rep *model.RunReport) {
	if r.Out == nil {
		return
	}
	sorted := make([]model.SyncOutcome, len(rep.Outcomes))
	copy(sorted, rep.Outcomes)
	sortutil.SortOutcomes(sorted)
	for _, o := range sorted {
		for _, msg := range o.Messages {
			fmt.Fprintf(r.Out, "  %s: %s\n", o.Name, msg)
		}
	}
}

func (r *Renderer) writeFooter(rep *model.RunReport) {
	if r.Progress == nil {
		return
	}
	line := fmt.Sprintf("Processed %s in %s",
		pluralRepos(len(rep.Outcomes)), formatElapsed(rep.Elapsed))
	if failed := rep.Failures(); failed > 0 {
		line += termstyle.Paint(r.Color, fmt.Sprintf(" (%d failed)", failed), termstyle.Error)
	}
	fmt.Fprintln(r.Progress, line)
}

func pluralRepos(n int) string {
	if n == 1 {
		return "1 repository"
	}
	return strconv.Itoa(n) + " repositories"
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}
