// Package model defines the core data types shared across update-repos.
package model

import (
	"time"
)

// Head represents the current HEAD state of a repository.
type Head struct {
	// Branch is the current branch name when HEAD is attached.
	Branch string `json:"branch" yaml:"branch"`
	// Detached reports whether HEAD is detached.
	Detached bool `json:"detached" yaml:"detached"`
	// ShortRev is the abbreviated revision id, resolved only for detached heads.
	ShortRev string `json:"short_rev,omitempty" yaml:"short_rev,omitempty"`
}

// Label renders the branch column value: the branch name when attached,
// "(detached at <shortrev>)" when detached, or "(detached)" when the
// revision could not be resolved.
func (h Head) Label() string {
	if !h.Detached {
		return h.Branch
	}
	if h.ShortRev == "" {
		return "(detached)"
	}
	return "(detached at " + h.ShortRev + ")"
}

// Worktree represents the working tree status.
type Worktree struct {
	// Dirty indicates whether the worktree has any local modifications.
	Dirty bool `json:"dirty" yaml:"dirty"`
	// Staged is the count of staged file changes.
	Staged int `json:"staged" yaml:"staged"`
	// Unstaged is the count of unstaged file changes.
	Unstaged int `json:"unstaged" yaml:"unstaged"`
	// Untracked is the count of untracked files.
	Untracked int `json:"untracked" yaml:"untracked"`
}

// Repository is one scanned working copy. Identity is the absolute path;
// the name is the last path segment. Branch, dirty and ahead/behind fields
// are refined in place as the sync pipeline progresses and the value is
// discarded when the run ends.
type Repository struct {
	// Name is the directory name of the repository.
	Name string `json:"name" yaml:"name"`
	// Path is the absolute local filesystem path.
	Path string `json:"path" yaml:"path"`
	// Head describes the current HEAD branch/detached state.
	Head Head `json:"head" yaml:"head"`
	// Dirty indicates whether the working tree has any uncommitted change,
	// tracked or untracked.
	Dirty bool `json:"dirty" yaml:"dirty"`
	// HasRemote reports whether the configured upstream remote exists.
	HasRemote bool `json:"has_remote" yaml:"has_remote"`
	// Ahead is the number of commits local is ahead of the remote branch.
	// Zero when the branch is detached or has no remote counterpart.
	Ahead int `json:"ahead" yaml:"ahead"`
	// Behind is the number of commits local is behind the remote branch.
	// Zero when the branch is detached or has no remote counterpart.
	Behind int `json:"behind" yaml:"behind"`
}

// PulledState records whether a repository's branch was pulled during a run.
type PulledState string

const (
	// PulledYes means a pull was attempted and succeeded.
	PulledYes PulledState = "Yes"
	// PulledNo means no pull was needed or the attempted pull did not apply.
	PulledNo PulledState = "No"
	// PulledSkipped means the repository was skipped before any fetch or pull.
	PulledSkipped PulledState = "Skipped"
	// PulledNoOrigin means the upstream remote does not exist.
	PulledNoOrigin PulledState = "No origin"
)

// StatusKind enumerates the terminal states of one repository's sync.
type StatusKind string

const (
	StatusNoRemote       StatusKind = "no_remote"
	StatusDirtySkipped   StatusKind = "dirty_skipped"
	StatusFetchFailed    StatusKind = "fetch_failed"
	StatusFetchOnly      StatusKind = "fetch_only"
	StatusUpToDate       StatusKind = "up_to_date"
	StatusFastForwarded  StatusKind = "fast_forwarded"
	StatusRebased        StatusKind = "rebased"
	StatusDetachedHead   StatusKind = "detached_head"
	StatusNoRemoteBranch StatusKind = "no_remote_branch"
	StatusPullFailed     StatusKind = "pull_failed"
	StatusPullError      StatusKind = "pull_error"
)

// Severity is the rendering family of a status: icon, color and the
// summary table's status-column omission all derive from it.
type Severity int

const (
	// SeverityOK covers the "up to date" family.
	SeverityOK Severity = iota
	// SeverityNeutral covers informational terminals such as fetch-only.
	SeverityNeutral
	// SeverityWarn covers skipped and dirty terminals.
	SeverityWarn
	// SeverityError covers fetch/pull failures.
	SeverityError
)

// StashResult records what happened to a stash pushed during a sync.
type StashResult string

const (
	// StashNone means no stash was pushed.
	StashNone StashResult = ""
	// StashRestored means the stash was popped cleanly.
	StashRestored StashResult = "restored"
	// StashConflicts means the pop reported conflicts and the tree is dirty.
	StashConflicts StashResult = "conflicts"
)

// Status is the tagged terminal state of one repository's sync. Rendering
// derives from the tag; Detail carries kind-specific text such as the
// missing remote ref.
type Status struct {
	// Kind is the terminal state tag.
	Kind StatusKind `json:"kind" yaml:"kind"`
	// Detail is kind-specific supplemental text (remote name for
	// StatusNoRemote, remote ref for StatusNoRemoteBranch).
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	// Stash is the stash disposition appended to the rendered label.
	Stash StashResult `json:"stash,omitempty" yaml:"stash,omitempty"`
}

// Label renders the status text shown in progress lines and the summary
// table, including the stash suffix when a stash was pushed.
func (s Status) Label() string {
	var base string
	switch s.Kind {
	case StatusNoRemote:
		base = "No remote " + s.Detail
	case StatusDirtySkipped:
		base = "Dirty (skipped)"
	case StatusFetchFailed:
		base = "Fetch failed"
	case StatusFetchOnly:
		base = "Fetched (pull skipped)"
	case StatusUpToDate:
		base = "Already up to date"
	case StatusFastForwarded:
		base = "Fast-forwarded"
	case StatusRebased:
		base = "Rebased"
	case StatusDetachedHead:
		base = "Detached HEAD (fetch only)"
	case StatusNoRemoteBranch:
		base = "No remote branch " + s.Detail
	case StatusPullFailed:
		base = "Pull failed"
	case StatusPullError:
		base = "Pull error"
	default:
		base = string(s.Kind)
	}
	switch s.Stash {
	case StashRestored:
		return base + " (Stash restored)"
	case StashConflicts:
		return base + " (Stash conflicts)"
	}
	return base
}

// Severity classifies the status for rendering. A stash conflict demotes
// an otherwise clean terminal to the warn family since the tree is left
// dirty for the operator.
func (s Status) Severity() Severity {
	if s.Stash == StashConflicts {
		return SeverityWarn
	}
	switch s.Kind {
	case StatusUpToDate, StatusFastForwarded, StatusRebased:
		return SeverityOK
	case StatusFetchOnly, StatusDetachedHead:
		return SeverityNeutral
	case StatusDirtySkipped, StatusNoRemote:
		return SeverityWarn
	default:
		return SeverityError
	}
}

// SyncOutcome records the result of one repository's sync. Exactly one
// exists per scanned repository per run, held in scan order.
type SyncOutcome struct {
	// Name is the repository directory name.
	Name string `json:"name" yaml:"name"`
	// Branch is the final branch label, including the detached form.
	Branch string `json:"branch" yaml:"branch"`
	// DirtyAtStart reports the working tree state before any stash.
	DirtyAtStart bool `json:"dirty_at_start" yaml:"dirty_at_start"`
	// Dirty reports the working tree state after the run, post stash-pop.
	Dirty bool `json:"dirty" yaml:"dirty"`
	// HasRemote reports whether the upstream remote existed.
	HasRemote bool `json:"has_remote" yaml:"has_remote"`
	// Pulled records whether the branch was pulled.
	Pulled PulledState `json:"pulled" yaml:"pulled"`
	// Status is the terminal state.
	Status Status `json:"status" yaml:"status"`
	// Ahead and Behind are the final commit counts, recomputed after a
	// successful pull.
	Ahead  int `json:"ahead" yaml:"ahead"`
	Behind int `json:"behind" yaml:"behind"`
	// Messages are ordered informational lines: stash notices and
	// fetch/pull diagnostics.
	Messages []string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// RunOptions is the immutable per-invocation configuration passed through
// every component. No component mutates it.
type RunOptions struct {
	// Root is the directory whose immediate children are scanned.
	Root string
	// NamePrefix filters candidate directories by name prefix.
	NamePrefix string
	// Excludes are glob patterns removing candidates by name.
	Excludes []string
	// RemoteName is the upstream remote consulted for fetch/pull.
	RemoteName string
	// NoPull fetches but never pulls.
	NoPull bool
	// SkipDirty skips dirty repositories entirely.
	SkipDirty bool
	// StashDirty stashes dirty trees around the pull and restores after.
	StashDirty bool
	// UseRebase pulls with rebase instead of fast-forward.
	UseRebase bool
	// FetchAllRemotes fetches every remote instead of only RemoteName.
	FetchAllRemotes bool
	// Verbose enables the full summary table and per-repo messages.
	Verbose bool
	// Jobs bounds concurrent repository processing. 1 is sequential.
	Jobs int
	// Timeout bounds each repository's processing. Zero disables it.
	Timeout time.Duration
	// FetchRetries is the number of additional fetch attempts on failure.
	FetchRetries int
	// RunID tags this run's stashes and report.
	RunID string
}

// RunReport is the aggregate result of one run.
type RunReport struct {
	// RunID identifies the run; stash messages carry it.
	RunID string `json:"run_id" yaml:"run_id"`
	// Root is the scanned root directory.
	Root string `json:"root" yaml:"root"`
	// GeneratedAt is the timestamp when the run finished.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	// Elapsed is the wall-clock duration of the whole batch.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
	// Outcomes holds one entry per scanned repository, in scan order.
	Outcomes []SyncOutcome `json:"outcomes" yaml:"outcomes"`
}

// Failures counts outcomes in the error family.
func (r RunReport) Failures() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status.Severity() == SeverityError {
			n++
		}
	}
	return n
}
