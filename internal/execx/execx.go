// Package execx invokes external collaborator tools as synchronous
// subprocesses with captured output. Everything that shells out, git
// included, goes through here.
package execx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result captures one collaborator invocation.
type Result struct {
	// ExitCode is the tool's exit status. Zero on success, -1 when the
	// process could not be started or was killed.
	ExitCode int
	// Output is the combined stdout/stderr text, whitespace-trimmed.
	// Diagnostic markers from line-oriented tools are scanned out of it.
	Output string
}

// Invoke runs bin with args in dir and waits for it to finish. The
// returned error wraps the exit status; Output is populated either way so
// callers can scan diagnostics even on failure. A context deadline kills
// the process and surfaces as the context's error.
func Invoke(ctx context.Context, dir, bin string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	res := Result{Output: strings.TrimSpace(string(out))}
	if err == nil {
		return res, nil
	}
	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}
	return res, fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), err)
}
