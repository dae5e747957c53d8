package gitx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hammy-pdi-dev/update-repos/internal/execx"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// WarnFunc receives gateway degradation warnings.
type WarnFunc func(format string, args ...any)

// FetchResult is the structured result of a fetch.
type FetchResult struct {
	// OK reports whether the fetch completed without error markers.
	OK bool
	// Note is the first diagnostic line when OK is false.
	Note string
	// Class is the broad failure category when OK is false.
	Class string
	// Attempts is the number of attempts made.
	Attempts int
}

// PullOutcome is the structured result of a pull.
type PullOutcome struct {
	// OK reports whether the pull applied cleanly.
	OK bool
	// Problem classifies the failure when OK is false.
	Problem PullProblem
	// Note is the first diagnostic line of the tool output.
	Note string
}

// Gateway wraps the low-level git operations behind the failure contract
// the sync pipeline relies on: every operation catches subprocess and
// parse failures and degrades to a safe default plus a warning, never an
// error. Callers must not treat a default as success.
type Gateway struct {
	// Runner executes the git invocations. Defaults to a GitRunner.
	Runner Runner
	// Remote is the upstream remote consulted by fetch/pull. Defaults to
	// "origin".
	Remote string
	// FetchRetry bounds repeated fetch attempts.
	FetchRetry execx.RetryPolicy
	// RunID tags stash messages so stashes are attributable to a run.
	RunID string
	// Warn receives degradation warnings. Nil discards them.
	Warn WarnFunc
	// Now is the clock used for stash message timestamps. Defaults to
	// time.Now.
	Now func() time.Time
}

func (g *Gateway) runner() Runner {
	if g.Runner == nil {
		return &GitRunner{}
	}
	return g.Runner
}

func (g *Gateway) remote() string {
	if g.Remote == "" {
		return "origin"
	}
	return g.Remote
}

func (g *Gateway) warnf(format string, args ...any) {
	if g.Warn != nil {
		g.Warn(format, args...)
	}
}

func (g *Gateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// RemoteName returns the effective upstream remote name.
func (g *Gateway) RemoteName() string {
	return g.remote()
}

// IsRepository reports whether path contains a git working tree.
func (g *Gateway) IsRepository(ctx context.Context, path string) bool {
	ok, _ := IsRepo(ctx, g.runner(), path)
	return ok
}

// Status returns the head state and whether the working tree is dirty.
func (g *Gateway) Status(ctx context.Context, path string) (model.Head, bool) {
	head, _ := Head(ctx, g.runner(), path)
	wt, err := WorktreeStatus(ctx, g.runner(), path)
	if err != nil {
		g.warnf("%s: status failed, assuming clean tree: %v", path, err)
		return head, false
	}
	return head, wt.Dirty
}

// Worktree returns the working tree change counts, zero on failure.
func (g *Gateway) Worktree(ctx context.Context, path string) model.Worktree {
	wt, err := WorktreeStatus(ctx, g.runner(), path)
	if err != nil {
		g.warnf("%s: status failed, assuming clean tree: %v", path, err)
		return model.Worktree{}
	}
	return wt
}

// HasRemote reports whether the configured upstream remote exists.
func (g *Gateway) HasRemote(ctx context.Context, path string) bool {
	ok, err := HasRemote(ctx, g.runner(), path, g.remote())
	if err != nil {
		g.warnf("%s: remote lookup failed, assuming no remote: %v", path, err)
		return false
	}
	return ok
}

// Fetch fetches with prune, retrying per the gateway's policy. Error and
// fatal markers in the output count as failure even on a zero exit.
func (g *Gateway) Fetch(ctx context.Context, path string, allRemotes bool) FetchResult {
	var lastOut string
	attempts, err := g.FetchRetry.Do(ctx, func(ctx context.Context) error {
		out, err := Fetch(ctx, g.runner(), path, g.remote(), allRemotes)
		lastOut = out
		if err != nil {
			return err
		}
		if HasErrorMarker(out) {
			return fmt.Errorf("fetch reported: %s", FirstDiagnostic(out))
		}
		return nil
	})
	if err == nil {
		return FetchResult{OK: true, Attempts: attempts}
	}
	note := FirstDiagnostic(lastOut)
	if note == "" {
		note = err.Error()
	}
	class := Classify(err, lastOut)
	g.warnf("%s: fetch failed after %d attempt(s) (%s): %s", path, attempts, class, note)
	return FetchResult{Note: note, Class: class, Attempts: attempts}
}

// AheadBehind returns the commit counts relative to the upstream branch.
// Detached heads and branches without a remote counterpart are 0/0.
func (g *Gateway) AheadBehind(ctx context.Context, path string, head model.Head) (int, int) {
	if head.Detached || head.Branch == "" {
		return 0, 0
	}
	upstream := g.remote() + "/" + head.Branch
	ahead, behind, err := AheadBehind(ctx, g.runner(), path, head.Branch, upstream)
	if err != nil {
		// An unknown upstream revision is the expected no-counterpart case.
		if !containsAny(strings.ToLower(err.Error()), "unknown revision", "ambiguous argument", "bad revision") {
			g.warnf("%s: ahead/behind failed, assuming 0/0: %v", path, err)
		}
		return 0, 0
	}
	return ahead, behind
}

// HasRemoteBranch reports whether the upstream copy of branch exists.
func (g *Gateway) HasRemoteBranch(ctx context.Context, path, branch string) bool {
	if branch == "" {
		return false
	}
	return HasRemoteBranch(ctx, g.runner(), path, g.remote(), branch)
}

// Pull integrates the upstream branch, scanning output for markers that
// override a misleadingly-zero exit code.
func (g *Gateway) Pull(ctx context.Context, path, branch string, rebase bool) PullOutcome {
	out, err := Pull(ctx, g.runner(), path, g.remote(), branch, rebase)
	problem := DiagnosePull(out)
	if err == nil && problem == PullOK {
		return PullOutcome{OK: true}
	}
	if problem == PullOK {
		problem = PullFatal
	}
	note := FirstDiagnostic(out)
	if note == "" && err != nil {
		note = err.Error()
	}
	return PullOutcome{Problem: problem, Note: note}
}

// StashPush stashes local changes under a run-tagged message and returns
// the message token, or "" when nothing was stashed.
func (g *Gateway) StashPush(ctx context.Context, path string) string {
	msg := fmt.Sprintf("update-repos auto-stash %s", g.now().UTC().Format(time.RFC3339))
	if g.RunID != "" {
		msg += " " + g.RunID
	}
	stashed, err := StashPush(ctx, g.runner(), path, msg)
	if err != nil {
		g.warnf("%s: stash push failed: %v", path, err)
		return ""
	}
	if !stashed {
		return ""
	}
	return msg
}

// StashPop pops the most recent stash. False means the pop did not apply
// cleanly and the tree needs operator attention.
func (g *Gateway) StashPop(ctx context.Context, path string) bool {
	out, err := StashPop(ctx, g.runner(), path)
	if HasConflictMarker(out) {
		return false
	}
	if err != nil {
		g.warnf("%s: stash pop failed: %v", path, err)
		return false
	}
	return true
}
