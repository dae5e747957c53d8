package updaterepos

import "github.com/spf13/cobra"

const (
	rootUsage    = "root directory whose immediate children are scanned (default: current directory)"
	prefixUsage  = "only consider child directories whose name starts with this prefix"
	excludeUsage = "comma-separated glob patterns of directory names to skip"
	remoteUsage  = "upstream remote consulted for fetch and pull"
)

// addScanFlags registers the flags shared by every command that discovers
// repositories.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("root", "", rootUsage)
	cmd.Flags().String("prefix", "", prefixUsage)
	cmd.Flags().String("exclude", "", excludeUsage)
	cmd.Flags().String("remote", "origin", remoteUsage)
}

// addSyncFlags registers the flags that shape a sync run.
func addSyncFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-pull", false, "fetch but never pull")
	cmd.Flags().Bool("skip-dirty", false, "skip repositories with uncommitted changes")
	cmd.Flags().Bool("stash-dirty", false, "stash uncommitted changes around the pull and restore afterwards")
	cmd.Flags().Bool("use-rebase", false, "pull with rebase instead of fast-forward only")
	cmd.Flags().Bool("fetch-all-remotes", false, "fetch every remote instead of only the upstream remote")
	cmd.Flags().Int("jobs", 0, "max concurrently processed repositories (default from config, 1 = sequential)")
	cmd.Flags().Int("timeout", 0, "per-repository timeout in seconds (default from config)")
	cmd.Flags().Int("fetch-retries", 0, "extra fetch attempts on failure, with doubling backoff")
}

func addNoHeadersFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-headers", false, "when printing a table, do not print headers")
}
