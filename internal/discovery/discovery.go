// Package discovery finds candidate repositories among the immediate
// children of a root directory.
package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hammy-pdi-dev/update-repos/internal/model"
)

// RepoProbe reports whether a directory contains version-control metadata.
type RepoProbe interface {
	IsRepository(ctx context.Context, path string) bool
}

// Options configures a scan.
type Options struct {
	// Root is the directory whose immediate children are considered.
	Root string
	// NamePrefix keeps only children whose name starts with it. Empty
	// keeps everything.
	NamePrefix string
	// Exclude holds glob patterns matched against child names.
	Exclude []string
	// Warn receives scan warnings. Nil discards them.
	Warn func(format string, args ...any)
}

// Scan lists the immediate children of the root in directory enumeration
// order, keeping those that pass the prefix and exclude filters and hold
// version-control metadata. A missing or unreadable root yields an empty
// list with a warning, not an error.
func Scan(ctx context.Context, probe RepoProbe, opts Options) []model.Repository {
	entries, err := os.ReadDir(opts.Root)
	if err != nil {
		warnf(opts, "cannot read root %q: %v", opts.Root, err)
		return nil
	}

	var repos []model.Repository
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(opts.Root, name)
		if !entry.IsDir() {
			// Symlinked directories still count as children.
			if entry.Type()&os.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		if opts.NamePrefix != "" && !strings.HasPrefix(name, opts.NamePrefix) {
			continue
		}
		if MatchesExclude(name, opts.Exclude) {
			continue
		}
		if !probe.IsRepository(ctx, path) {
			continue
		}
		repos = append(repos, model.Repository{Name: name, Path: path})
	}
	return repos
}

// MatchesExclude checks whether a name matches any of the given exclude
// glob patterns.
func MatchesExclude(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashName := filepath.ToSlash(name)
	for _, pattern := range patterns {
		match, err := doublestar.Match(filepath.ToSlash(pattern), slashName)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

func warnf(opts Options, format string, args ...any) {
	if opts.Warn != nil {
		opts.Warn(format, args...)
	}
}
