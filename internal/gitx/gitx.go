// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"context"
	"fmt"
	"strings"

	"github.com/hammy-pdi-dev/update-repos/internal/execx"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// combined stdout/stderr output.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	res, err := execx.Invoke(ctx, dir, bin, args...)
	return res.Output, err
}

// IsRepo checks whether the given path is inside a git working tree.
func IsRepo(ctx context.Context, r Runner, dir string) (bool, error) {
	out, err := r.Run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(out) == "true", nil
}

// Head returns the current branch and detached state. A detached head
// carries the abbreviated revision when it can be resolved.
func Head(ctx context.Context, r Runner, dir string) (model.Head, error) {
	out, err := r.Run(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		hash, hashErr := r.Run(ctx, dir, "rev-parse", "--short", "HEAD")
		if hashErr != nil {
			return model.Head{Detached: true}, nil
		}
		return model.Head{
			Detached: true,
			ShortRev: strings.TrimSpace(hash),
		}, nil
	}
	return model.Head{
		Branch: strings.TrimSpace(out),
	}, nil
}

// WorktreeStatus returns the working tree dirty/staged/unstaged/untracked
// counts.
func WorktreeStatus(ctx context.Context, r Runner, dir string) (model.Worktree, error) {
	out, err := r.Run(ctx, dir, "status", "--porcelain=v1")
	if err != nil {
		return model.Worktree{}, fmt.Errorf("git status: %w", err)
	}
	return ParsePorcelainStatus(out), nil
}

// HasRemote reports whether the named remote is configured.
func HasRemote(ctx context.Context, r Runner, dir, name string) (bool, error) {
	out, err := r.Run(ctx, dir, "remote")
	if err != nil {
		return false, fmt.Errorf("git remote: %w", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// HasRemoteBranch reports whether remote/branch exists locally after a
// fetch. A nonzero exit is the expected no-such-ref outcome, not an error.
func HasRemoteBranch(ctx context.Context, r Runner, dir, remote, branch string) bool {
	ref := "refs/remotes/" + remote + "/" + branch
	_, err := r.Run(ctx, dir, "rev-parse", "--verify", "--quiet", ref)
	return err == nil
}

// AheadBehind returns how many commits branch is ahead of and behind
// upstream.
func AheadBehind(ctx context.Context, r Runner, dir, branch, upstream string) (int, int, error) {
	out, err := r.Run(ctx, dir, "rev-list", "--left-right", "--count", branch+"..."+upstream)
	if err != nil {
		return 0, 0, fmt.Errorf("git rev-list: %w", err)
	}
	ahead, behind, ok := ParseRevListCount(out)
	if !ok {
		return 0, 0, fmt.Errorf("git rev-list: unexpected output %q", out)
	}
	return ahead, behind, nil
}
