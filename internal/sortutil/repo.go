// Package sortutil provides the deterministic orderings used by report
// output.
package sortutil

import (
	"sort"

	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// LessNamePath orders by repository name first, then by path for
// same-named checkouts under different roots.
func LessNamePath(nameI, pathI, nameJ, pathJ string) bool {
	if nameI == nameJ {
		return pathI < pathJ
	}
	return nameI < nameJ
}

// SortOutcomes orders sync outcomes by repository name ascending. The
// caller's slice keeps scan order; sort a copy when both orders matter.
func SortOutcomes(outcomes []model.SyncOutcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Name < outcomes[j].Name
	})
}

// SortRepositories orders repositories by name, then path.
func SortRepositories(repos []model.Repository) {
	sort.SliceStable(repos, func(i, j int) bool {
		return LessNamePath(repos[i].Name, repos[i].Path, repos[j].Name, repos[j].Path)
	})
}
