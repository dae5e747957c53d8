// Package updaterepos contains the Cobra command tree for the update-repos CLI.
package updaterepos

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/hammy-pdi-dev/update-repos/internal/engine"
	"github.com/hammy-pdi-dev/update-repos/internal/execx"
	"github.com/hammy-pdi-dev/update-repos/internal/gitx"
	"github.com/hammy-pdi-dev/update-repos/internal/report"
	"github.com/hammy-pdi-dev/update-repos/internal/termstyle"
)

// Exit codes. Individual repository failures never abort the batch; they
// surface only through exitRepoFailures once every repository has run.
const (
	exitOK           = 0
	exitInvalidRoot  = 1
	exitUsage        = 2
	exitRepoFailures = 3
)

var (
	// Global flags
	flagVerbose int
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
	// exitCode tracks the highest severity observed during a command run.
	exitCode int
	// isTerminalFD is overridable in tests.
	isTerminalFD = term.IsTerminal
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
	// newRunID is overridable in tests.
	newRunID = func() string { return uuid.NewString()[:8] }
)

var rootCmd = &cobra.Command{
	Use:   "update-repos [root]",
	Short: "Synchronize a tree of git repositories",
	Long: "update-repos scans the immediate children of a root directory for git repositories,\n" +
		"fetches each one, and fast-forwards or rebases branches that are behind their\n" +
		"upstream. Dirty trees can be skipped or stashed around the pull; every repository\n" +
		"gets exactly one outcome line and the batch never stops on a single failure.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// `NO_COLOR` is a standard opt-out and should behave like --no-color.
		if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
			flagNoColor = true
		}
	},
	RunE: runSync,
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagAliases)
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "override config file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	addScanFlags(rootCmd)
	addSyncFlags(rootCmd)
	addFormatFlag(rootCmd, "report format: table, json, or yaml")
	rootCmd.MarkFlagsMutuallyExclusive("skip-dirty", "stash-dirty")
}

// normalizeFlagAliases keeps the long spellings from earlier versions of
// the tool working.
func normalizeFlagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "fetch-all":
		name = "fetch-all-remotes"
	case "rebase":
		name = "use-rebase"
	case "verbose-branches":
		name = "verbose"
	}
	return pflag.NormalizedName(name)
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly
// exit code: 0 success, 1 invalid root path, 2 bad arguments or
// configuration, 3 one or more repository failures.
func ExecuteWithExitCode() int {
	exitCode = exitOK
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", err)
		if errors.Is(err, engine.ErrInvalidRoot) {
			return exitInvalidRoot
		}
		return exitUsage
	}
	return exitCode
}

func raiseExitCode(code int) {
	// Keep the highest severity seen during the run.
	if code > exitCode {
		exitCode = code
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	debugf(cmd, "starting sync")
	kind, err := outputKindFor(cmd)
	if err != nil {
		return err
	}
	opts, err := buildRunOptions(cmd, args)
	if err != nil {
		return err
	}
	opts.RunID = newRunID()
	debugf(cmd, "run %s: root %s", opts.RunID, opts.Root)

	warn := func(format string, warnArgs ...any) { warnf(cmd, format, warnArgs...) }
	gw := &gitx.Gateway{
		Remote: opts.RemoteName,
		RunID:  opts.RunID,
		Warn:   warn,
	}
	if opts.FetchRetries > 0 {
		gw.FetchRetry = execx.RetryPolicy{
			MaxAttempts: opts.FetchRetries + 1,
			Backoff:     time.Second,
		}
	}

	ren := &report.Renderer{
		Progress: cmd.ErrOrStderr(),
		Out:      cmd.OutOrStdout(),
		Color:    colorEnabled(cmd),
		Verbose:  opts.Verbose,
	}
	if flagQuiet {
		ren.Progress = nil
	}

	coord := &engine.Coordinator{Gateway: gw, Warn: warn}
	rep, err := coord.Run(cmd.Context(), opts, ren.RepoLine)
	if err != nil {
		return err
	}
	if kind == outputKindTable {
		ren.Summary(rep)
	} else if err := writeEncoded(cmd.OutOrStdout(), kind, rep); err != nil {
		return err
	}
	if rep.Failures() > 0 {
		raiseExitCode(exitRepoFailures)
	}
	return nil
}

// colorEnabled decides coloring from the flags, the NO_COLOR convention
// and whether stderr (where progress goes) is a terminal.
func colorEnabled(cmd *cobra.Command) bool {
	return termstyle.Enabled(flagNoColor, writerIsTerminal(cmd.ErrOrStderr()))
}

func writerIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(int(file.Fd()))
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// warnf reports downgraded defaults and scan problems. Unlike debugf it is
// not gated on verbosity: a degraded result must never be silent.
func warnf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet || flagVerbose <= 0 {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
