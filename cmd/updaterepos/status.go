package updaterepos

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hammy-pdi-dev/update-repos/internal/cliio"
	"github.com/hammy-pdi-dev/update-repos/internal/discovery"
	"github.com/hammy-pdi-dev/update-repos/internal/engine"
	"github.com/hammy-pdi-dev/update-repos/internal/gitx"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
	"github.com/hammy-pdi-dev/update-repos/internal/sortutil"
	"github.com/hammy-pdi-dev/update-repos/internal/termstyle"
)

var statusCmd = &cobra.Command{
	Use:   "status [root]",
	Short: "Report branch, dirty state and ahead/behind counts without fetching",
	Long: "status inspects the repositories under the root the same way a sync run would,\n" +
		"but issues no fetch, pull or stash. Ahead/behind counts reflect the remote refs\n" +
		"as of the last fetch.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatus,
}

func init() {
	addScanFlags(statusCmd)
	addNoHeadersFlag(statusCmd)
	addFormatFlag(statusCmd, "output format: table, json, or yaml")
	rootCmd.AddCommand(statusCmd)
}

// statusEntry is the machine-readable row: the repository snapshot plus the
// working tree change counts the table collapses into the DIRTY column.
type statusEntry struct {
	model.Repository `yaml:",inline"`
	Worktree         model.Worktree `json:"worktree" yaml:"worktree"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	debugf(cmd, "starting status")
	kind, err := outputKindFor(cmd)
	if err != nil {
		return err
	}
	opts, err := buildRunOptions(cmd, args)
	if err != nil {
		return err
	}

	warn := func(format string, warnArgs ...any) { warnf(cmd, format, warnArgs...) }
	gw := &gitx.Gateway{Remote: opts.RemoteName, Warn: warn}

	if err := validateRoot(opts.Root); err != nil {
		return err
	}
	repos := discovery.Scan(cmd.Context(), gw, discovery.Options{
		Root:       opts.Root,
		NamePrefix: opts.NamePrefix,
		Exclude:    opts.Excludes,
		Warn:       warn,
	})
	for i := range repos {
		repo := &repos[i]
		repo.Head, repo.Dirty = gw.Status(cmd.Context(), repo.Path)
		repo.HasRemote = gw.HasRemote(cmd.Context(), repo.Path)
		repo.Ahead, repo.Behind = gw.AheadBehind(cmd.Context(), repo.Path, repo.Head)
	}
	sortutil.SortRepositories(repos)

	if kind != outputKindTable {
		entries := make([]statusEntry, 0, len(repos))
		for _, repo := range repos {
			entries = append(entries, statusEntry{
				Repository: repo,
				Worktree:   gw.Worktree(cmd.Context(), repo.Path),
			})
		}
		return writeEncoded(cmd.OutOrStdout(), kind, entries)
	}

	color := termstyle.Enabled(flagNoColor, writerIsTerminal(cmd.OutOrStdout()))
	branchLimit := adaptiveCellLimit(cmd, 48, 32, 20)
	noHeaders, _ := cmd.Flags().GetBool("no-headers")
	rows := make([][]string, 0, len(repos))
	for _, repo := range repos {
		dirty := termstyle.Colorize(color, "no", termstyle.Healthy)
		if repo.Dirty {
			dirty = termstyle.Colorize(color, "yes", termstyle.Warn)
		}
		remote := opts.RemoteName
		if !repo.HasRemote {
			remote = termstyle.Colorize(color, "-", termstyle.Warn)
		}
		rows = append(rows, []string{
			repo.Name,
			truncateCell(repo.Head.Label(), branchLimit),
			dirty,
			strconv.Itoa(repo.Ahead),
			strconv.Itoa(repo.Behind),
			remote,
		})
	}
	err = cliio.WriteTable(cmd.OutOrStdout(), true, noHeaders,
		[]string{"REPO", "BRANCH", "DIRTY", "AHEAD", "BEHIND", "REMOTE"}, rows)
	if err != nil {
		// Pipes that close early (for example `head`) are not a failure.
		debugf(cmd, "ignored output write failure: %v", err)
	}
	infof(cmd, "%d repositories under %s", len(repos), opts.Root)
	return nil
}

// validateRoot mirrors the coordinator's root check so status shares the
// invalid-root exit code without running a sync.
func validateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return engine.InvalidRootError(root)
	}
	return nil
}

func truncateCell(value string, limit int) string {
	runes := []rune(value)
	if limit <= 1 || len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
