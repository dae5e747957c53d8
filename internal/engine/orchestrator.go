package engine

import (
	"context"
	"time"

	"github.com/hammy-pdi-dev/update-repos/internal/gitx"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// stashPopGrace bounds the stash pop attempted after a repository's budget
// already expired.
const stashPopGrace = 30 * time.Second

// Orchestrator runs the sync sequence for a single repository. Steps are
// strictly ordered: inspect, pre-fetch decision, optional stash push,
// fetch, pull decision, optional pull, stash pop. A pushed stash is popped
// exactly once before the outcome is finalized, whatever the pull did.
type Orchestrator struct {
	Gateway *gitx.Gateway
	Policy  Policy
	// FetchAll fetches every remote instead of only the gateway's remote.
	FetchAll bool
}

// Process syncs one repository and returns its outcome. Failures are
// captured into the outcome's status and messages; Process never returns
// an error and never aborts the surrounding run.
func (o *Orchestrator) Process(ctx context.Context, repo model.Repository) model.SyncOutcome {
	head, dirty := o.Gateway.Status(ctx, repo.Path)
	repo.Head = head
	repo.Dirty = dirty
	repo.HasRemote = o.Gateway.HasRemote(ctx, repo.Path)

	out := model.SyncOutcome{
		Name:         repo.Name,
		Branch:       head.Label(),
		DirtyAtStart: dirty,
		Dirty:        dirty,
		HasRemote:    repo.HasRemote,
	}

	stashed := false
	switch o.Policy.Decide(State{HasRemote: repo.HasRemote, Dirty: dirty}) {
	case ActionNoRemoteAbort:
		out.Pulled = model.PulledNoOrigin
		out.Status = model.Status{Kind: model.StatusNoRemote, Detail: o.Gateway.RemoteName()}
		return out
	case ActionDirtySkip:
		out.Pulled = model.PulledSkipped
		out.Status = model.Status{Kind: model.StatusDirtySkipped}
		return out
	case ActionDirtyStash:
		if msg := o.Gateway.StashPush(ctx, repo.Path); msg != "" {
			stashed = true
			out.Dirty = false
			out.Messages = append(out.Messages, "stashed local changes: "+msg)
		}
	}

	fetched := o.Gateway.Fetch(ctx, repo.Path, o.FetchAll)
	if !fetched.OK {
		out.Pulled = model.PulledNo
		out.Status = model.Status{Kind: model.StatusFetchFailed}
		if fetched.Note != "" {
			out.Messages = append(out.Messages, "fetch: "+fetched.Note)
		}
		o.restoreStash(ctx, repo.Path, stashed, &out)
		return out
	}

	ahead, behind := o.Gateway.AheadBehind(ctx, repo.Path, head)
	repo.Ahead, repo.Behind = ahead, behind
	out.Ahead, out.Behind = ahead, behind

	action := o.Policy.PullAction(State{Detached: head.Detached, Behind: behind})
	switch action {
	case ActionDetachedHead:
		out.Pulled = model.PulledNo
		out.Status = model.Status{Kind: model.StatusDetachedHead}
	case ActionFetchOnly:
		out.Pulled = model.PulledNo
		out.Status = model.Status{Kind: model.StatusFetchOnly}
	case ActionUpToDate:
		out.Pulled = model.PulledNo
		if !o.remoteBranchMissing(ctx, repo.Path, head, &out) {
			out.Status = model.Status{Kind: model.StatusUpToDate}
		}
	case ActionFastForward, ActionRebase:
		if o.remoteBranchMissing(ctx, repo.Path, head, &out) {
			out.Pulled = model.PulledNo
			break
		}
		o.pull(ctx, repo.Path, head, action == ActionRebase, &out)
	}

	o.restoreStash(ctx, repo.Path, stashed, &out)
	return out
}

// remoteBranchMissing verifies the upstream ref right before the pull
// decision applies. A counterpart missing here wins over whatever the
// counts said; the race between fetch and verify is tolerated, not retried.
func (o *Orchestrator) remoteBranchMissing(ctx context.Context, path string, head model.Head, out *model.SyncOutcome) bool {
	if o.Gateway.HasRemoteBranch(ctx, path, head.Branch) {
		return false
	}
	out.Status = model.Status{
		Kind:   model.StatusNoRemoteBranch,
		Detail: o.Gateway.RemoteName() + "/" + head.Branch,
	}
	out.Ahead, out.Behind = 0, 0
	return true
}

func (o *Orchestrator) pull(ctx context.Context, path string, head model.Head, rebase bool, out *model.SyncOutcome) {
	res := o.Gateway.Pull(ctx, path, head.Branch, rebase)
	if res.OK {
		out.Pulled = model.PulledYes
		kind := model.StatusFastForwarded
		if rebase {
			kind = model.StatusRebased
		}
		out.Status = model.Status{Kind: kind}
		out.Ahead, out.Behind = o.Gateway.AheadBehind(ctx, path, head)
		return
	}

	out.Pulled = model.PulledNo
	switch res.Problem {
	case gitx.PullMissingRemoteRef:
		out.Status = model.Status{
			Kind:   model.StatusNoRemoteBranch,
			Detail: o.Gateway.RemoteName() + "/" + head.Branch,
		}
		out.Ahead, out.Behind = 0, 0
	case gitx.PullConflict, gitx.PullDiverged:
		out.Status = model.Status{Kind: model.StatusPullFailed}
	default:
		out.Status = model.Status{Kind: model.StatusPullError}
	}
	if res.Note != "" {
		out.Messages = append(out.Messages, "pull: "+res.Note)
	}
}

// restoreStash pops a pushed stash exactly once, even when the repository
// budget expired mid-sequence. A conflicted pop leaves the tree dirty, so
// the dirty flag is rechecked.
func (o *Orchestrator) restoreStash(ctx context.Context, path string, stashed bool, out *model.SyncOutcome) {
	if !stashed {
		return
	}
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), stashPopGrace)
		defer cancel()
	}
	if o.Gateway.StashPop(ctx, path) {
		out.Status.Stash = model.StashRestored
		return
	}
	out.Status.Stash = model.StashConflicts
	out.Dirty = o.Gateway.Worktree(ctx, path).Dirty
	out.Messages = append(out.Messages, "stash pop reported conflicts; resolve manually")
}
