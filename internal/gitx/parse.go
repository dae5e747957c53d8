package gitx

import (
	"strconv"
	"strings"

	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// ParsePorcelainStatus parses the output of `git status --porcelain=v1`
// into a Worktree struct.
func ParsePorcelainStatus(output string) model.Worktree {
	var wt model.Worktree
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 2 {
			continue
		}
		x := line[0]
		y := line[1]

		if x == '?' && y == '?' {
			wt.Untracked++
			continue
		}
		if x != ' ' && x != '?' {
			wt.Staged++
		}
		if y != ' ' && y != '?' {
			wt.Unstaged++
		}
	}
	wt.Dirty = wt.Staged > 0 || wt.Unstaged > 0 || wt.Untracked > 0
	return wt
}

// ParseRevListCount parses the output of:
//
//	git rev-list --left-right --count <branch>...<upstream>
//
// Returns (ahead, behind, ok). ok is false when the output does not have
// the expected tab-separated two-count shape.
func ParseRevListCount(output string) (int, int, bool) {
	output = strings.TrimSpace(output)
	if output == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(output, "\t", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	ahead, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	behind, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return ahead, behind, true
}
