// SPDX-License-Identifier: MIT
package gitx

import "strings"

// PullProblem classifies the failure mode of a pull from its output.
type PullProblem string

const (
	// PullOK means no failure markers were found.
	PullOK PullProblem = ""
	// PullMissingRemoteRef means the remote branch does not exist.
	PullMissingRemoteRef PullProblem = "missing_remote_ref"
	// PullConflict means a merge or rebase conflict was reported.
	PullConflict PullProblem = "conflict"
	// PullDiverged means the branches have diverged and a fast-forward was
	// not possible.
	PullDiverged PullProblem = "diverged"
	// PullFatal covers any other error/fatal diagnostic.
	PullFatal PullProblem = "fatal"
)

// DiagnosePull scans pull output for the markers that matter even when
// the tool exits zero. The more specific problems are matched first.
func DiagnosePull(output string) PullProblem {
	lower := strings.ToLower(output)
	switch {
	case containsAny(lower, "couldn't find remote ref", "no such ref was fetched"):
		return PullMissingRemoteRef
	case strings.Contains(output, "CONFLICT") || strings.Contains(lower, "merge conflict"):
		return PullConflict
	case containsAny(lower, "divergent branches", "not possible to fast-forward", "cannot fast-forward"):
		return PullDiverged
	case containsAny(lower, "error:", "fatal:"):
		return PullFatal
	}
	return PullOK
}

// HasErrorMarker reports whether line-oriented tool output carries an
// error or fatal diagnostic.
func HasErrorMarker(output string) bool {
	lower := strings.ToLower(output)
	return containsAny(lower, "error:", "fatal:")
}

// HasConflictMarker reports whether stash output indicates a conflict.
func HasConflictMarker(output string) bool {
	return strings.Contains(output, "CONFLICT") || strings.Contains(strings.ToLower(output), "merge conflict")
}

// FirstDiagnostic returns the first line of output that carries a
// recognized error marker, falling back to the first non-empty line so a
// failure always has something attributable to report.
func FirstDiagnostic(output string) string {
	var fallback string
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if fallback == "" {
			fallback = trimmed
		}
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "error:") || strings.HasPrefix(lower, "fatal:") ||
			strings.Contains(trimmed, "CONFLICT") || strings.Contains(lower, "divergent branches") {
			return trimmed
		}
	}
	return fallback
}
