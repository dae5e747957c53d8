// Package engine drives the sync run: policy decisions, the per-repository
// step sequence, and batch coordination across the scanned set.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hammy-pdi-dev/update-repos/internal/discovery"
	"github.com/hammy-pdi-dev/update-repos/internal/gitx"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// ErrInvalidRoot reports a root path that is missing or not a directory.
var ErrInvalidRoot = errors.New("invalid root")

// InvalidRootError wraps ErrInvalidRoot with the offending path.
func InvalidRootError(root string) error {
	return fmt.Errorf("%w: %q is not a directory", ErrInvalidRoot, root)
}

const maxWorkerChannelBuffer = 100

// ProgressFunc receives each outcome. completed is the 1-based scan-order
// position, total the number of scanned repositories. Outcomes are always
// delivered in scan order, even when repositories finish out of order
// under parallel jobs. It is invoked on the coordinator goroutine, so
// callers can write terminal output without additional synchronization.
type ProgressFunc func(completed, total int, outcome model.SyncOutcome)

// Coordinator runs a whole batch: root validation, scanning, dispatching
// repositories to the orchestrator, and assembling the report.
type Coordinator struct {
	// Gateway is shared by the scan probe and repository processing.
	Gateway *gitx.Gateway
	// Warn receives scan-level warnings. Nil discards them.
	Warn gitx.WarnFunc
}

// Run syncs every repository under opts.Root. The returned report holds
// outcomes in scan order; progress fires in completion order. Only an
// invalid root yields an error — no repository's failure stops the rest.
func (c *Coordinator) Run(ctx context.Context, opts model.RunOptions, progress ProgressFunc) (*model.RunReport, error) {
	start := time.Now()

	info, err := os.Stat(opts.Root)
	if err != nil || !info.IsDir() {
		return nil, InvalidRootError(opts.Root)
	}

	repos := discovery.Scan(ctx, c.Gateway, discovery.Options{
		Root:       opts.Root,
		NamePrefix: opts.NamePrefix,
		Exclude:    opts.Excludes,
		Warn:       c.Warn,
	})

	orch := &Orchestrator{
		Gateway:  c.Gateway,
		Policy:   PolicyFromOptions(opts),
		FetchAll: opts.FetchAllRemotes,
	}

	outcomes := make([]model.SyncOutcome, len(repos))
	if opts.Jobs > 1 && len(repos) > 1 {
		c.runParallel(ctx, orch, repos, opts, outcomes, progress)
	} else {
		c.runSequential(ctx, orch, repos, opts, outcomes, progress)
	}

	return &model.RunReport{
		RunID:       opts.RunID,
		Root:        opts.Root,
		GeneratedAt: time.Now(),
		Elapsed:     time.Since(start),
		Outcomes:    outcomes,
	}, nil
}

func (c *Coordinator) runSequential(ctx context.Context, orch *Orchestrator, repos []model.Repository, opts model.RunOptions, outcomes []model.SyncOutcome, progress ProgressFunc) {
	for i, repo := range repos {
		outcomes[i] = processWithBudget(ctx, orch, repo, opts.Timeout)
		if progress != nil {
			progress(i+1, len(repos), outcomes[i])
		}
	}
}

// runParallel fans repositories out to a bounded worker pool. Each
// repository's step sequence stays internally sequential; outcomes land at
// their scan index and progress is released in scan order, holding back
// early finishers until their predecessors have been emitted.
func (c *Coordinator) runParallel(ctx context.Context, orch *Orchestrator, repos []model.Repository, opts model.RunOptions, outcomes []model.SyncOutcome, progress ProgressFunc) {
	type done struct {
		idx     int
		outcome model.SyncOutcome
	}

	sem := make(chan struct{}, opts.Jobs)
	out := make(chan done, workerChannelBufferSize(len(repos)))
	spawned := 0

	for i, repo := range repos {
		sem <- struct{}{}
		spawned++
		go func(idx int, repo model.Repository) {
			outcome := processWithBudget(ctx, orch, repo, opts.Timeout)
			// Release the pool slot before handing off the outcome: the
			// collector below only starts once dispatch has finished, and a
			// worker stuck on a full out channel must not wedge dispatch by
			// holding its slot.
			<-sem
			out <- done{idx: idx, outcome: outcome}
		}(i, repo)
	}

	finished := make([]bool, len(repos))
	next := 0
	for completed := 0; completed < spawned; completed++ {
		d := <-out
		outcomes[d.idx] = d.outcome
		finished[d.idx] = true
		for next < len(repos) && finished[next] {
			if progress != nil {
				progress(next+1, len(repos), outcomes[next])
			}
			next++
		}
	}
}

func processWithBudget(ctx context.Context, orch *Orchestrator, repo model.Repository, budget time.Duration) model.SyncOutcome {
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}
	return orch.Process(ctx, repo)
}

func workerChannelBufferSize(entryCount int) int {
	if entryCount <= 0 {
		return 1
	}
	if entryCount > maxWorkerChannelBuffer {
		return maxWorkerChannelBuffer
	}
	return entryCount
}
