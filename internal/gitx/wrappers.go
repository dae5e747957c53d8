package gitx

import (
	"context"
	"strings"
)

// Fetch runs a pruning fetch with submodule recursion disabled, against
// every remote when all is set or only against remote otherwise. The
// combined output is returned for diagnostic scanning since git can print
// per-remote error lines while still exiting zero.
func Fetch(ctx context.Context, r Runner, dir, remote string, all bool) (string, error) {
	args := []string{"-c", "fetch.recurseSubmodules=false", "fetch", "--prune", "--prune-tags", "--no-recurse-submodules"}
	if all {
		args = append(args, "--all")
	} else {
		args = append(args, remote)
	}
	return r.Run(ctx, dir, args...)
}

// Pull integrates remote/branch into the current branch: fast-forward-only
// by default, rebase when requested. Output is returned even on error so
// conflict and divergence markers can be scanned.
func Pull(ctx context.Context, r Runner, dir, remote, branch string, rebase bool) (string, error) {
	mode := "--ff-only"
	if rebase {
		mode = "--rebase"
	}
	return r.Run(ctx, dir, "pull", mode, remote, branch)
}

// StashPush stashes local changes including untracked files. It returns
// false when git reports there was nothing to stash.
func StashPush(ctx context.Context, r Runner, dir, msg string) (bool, error) {
	args := []string{"stash", "push", "-u"}
	if msg != "" {
		args = append(args, "-m", msg)
	}
	out, err := r.Run(ctx, dir, args...)
	if err != nil {
		return false, err
	}
	if strings.Contains(out, "No local changes to save") {
		return false, nil
	}
	return true, nil
}

// StashPop pops the most recent stash. Output is returned for conflict
// scanning; a conflicted pop can exit nonzero while leaving the conflict
// text as the only reliable signal.
func StashPop(ctx context.Context, r Runner, dir string) (string, error) {
	return r.Run(ctx, dir, "stash", "pop")
}
