// SPDX-License-Identifier: MIT

package engine

import (
	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// Action is the typed decision the sync policy produces for one repository
// state. Rendering and outcome mapping derive from the tag; nothing matches
// on free text.
type Action string

const (
	// ActionNoRemoteAbort terminates before any fetch: the upstream remote
	// does not exist.
	ActionNoRemoteAbort Action = "no_remote_abort"
	// ActionDirtySkip terminates before any fetch: the tree is dirty and
	// the run skips dirty repositories.
	ActionDirtySkip Action = "dirty_skip"
	// ActionDirtyStash proceeds to fetch after stashing the dirty tree.
	ActionDirtyStash Action = "dirty_stash"
	// ActionFetch proceeds straight to fetch.
	ActionFetch Action = "fetch"

	// ActionDetachedHead stops after fetch: HEAD is not on a branch.
	ActionDetachedHead Action = "detached_head"
	// ActionFetchOnly stops after fetch: pulling is disabled for the run.
	ActionFetchOnly Action = "fetch_only"
	// ActionUpToDate stops after fetch: there is nothing to integrate.
	ActionUpToDate Action = "up_to_date"
	// ActionFastForward pulls with fast-forward only.
	ActionFastForward Action = "fast_forward"
	// ActionRebase pulls with rebase.
	ActionRebase Action = "rebase"
)

// State is the policy-relevant snapshot of one repository. Behind is only
// meaningful after a fetch has refreshed the remote refs.
type State struct {
	HasRemote bool
	Dirty     bool
	Detached  bool
	Behind    int
}

// Policy derives sync decisions from the run options. It is pure: no
// gateway calls, no side effects, so decisions are trivially testable.
type Policy struct {
	SkipDirty  bool
	StashDirty bool
	NoPull     bool
	UseRebase  bool
}

// PolicyFromOptions extracts the decision-relevant toggles.
func PolicyFromOptions(opts model.RunOptions) Policy {
	return Policy{
		SkipDirty:  opts.SkipDirty,
		StashDirty: opts.StashDirty,
		NoPull:     opts.NoPull,
		UseRebase:  opts.UseRebase,
	}
}

// Decide returns the pre-fetch action. Checks are ordered: the remote
// check precedes dirty handling, and the skip toggle precedes the stash
// toggle when both are somehow set.
func (p Policy) Decide(s State) Action {
	if !s.HasRemote {
		return ActionNoRemoteAbort
	}
	if s.Dirty && p.SkipDirty {
		return ActionDirtySkip
	}
	if s.Dirty && p.StashDirty {
		return ActionDirtyStash
	}
	return ActionFetch
}

// PullAction returns the post-fetch action. A detached HEAD short-circuits
// everything else; a disabled pull wins over the behind count.
func (p Policy) PullAction(s State) Action {
	if s.Detached {
		return ActionDetachedHead
	}
	if p.NoPull {
		return ActionFetchOnly
	}
	if s.Behind == 0 {
		return ActionUpToDate
	}
	if p.UseRebase {
		return ActionRebase
	}
	return ActionFastForward
}
