package updaterepos

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hammy-pdi-dev/update-repos/internal/config"
	"github.com/hammy-pdi-dev/update-repos/internal/model"
	"github.com/hammy-pdi-dev/update-repos/internal/strutil"
)

// loadRunConfig resolves and loads the configuration for a command run. A
// missing file is only an error when the user pointed at one explicitly;
// otherwise built-in defaults apply.
func loadRunConfig(cmd *cobra.Command) (string, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, err
	}
	cfgPath, err := config.ResolveConfigPath(flagConfig, cwd)
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) && flagConfig == "" && os.Getenv(config.EnvConfigPath) == "" {
			defaults := config.DefaultConfig()
			return cfgPath, &defaults, nil
		}
		return "", nil, err
	}
	debugf(cmd, "using config %s", cfgPath)
	return cfgPath, cfg, nil
}

// buildRunOptions assembles the immutable options for a run. Precedence is
// flags over config file over built-in defaults; the positional argument
// wins over the --root flag.
func buildRunOptions(cmd *cobra.Command, args []string) (model.RunOptions, error) {
	cfgPath, cfg, err := loadRunConfig(cmd)
	if err != nil {
		return model.RunOptions{}, err
	}

	flags := cmd.Flags()
	opts := model.RunOptions{
		NamePrefix: cfg.NamePrefix,
		Excludes:   cfg.Exclude,
		RemoteName: cfg.Defaults.RemoteName,
		NoPull:     cfg.Sync.NoPull,
		SkipDirty:  cfg.Sync.SkipDirty,
		StashDirty: cfg.Sync.StashDirty,
		UseRebase:  cfg.Sync.UseRebase,

		FetchAllRemotes: cfg.Sync.FetchAllRemotes,
		Jobs:            cfg.Defaults.Jobs,
		Timeout:         time.Duration(cfg.Defaults.TimeoutSeconds) * time.Second,
		FetchRetries:    cfg.Defaults.FetchRetries,
		Verbose:         flagVerbose > 0,
	}

	root := config.EffectiveRoot(cfgPath, cfg)
	if flags.Changed("root") {
		root, _ = flags.GetString("root")
	}
	if len(args) > 0 {
		root = args[0]
	}
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return model.RunOptions{}, err
		}
	}
	opts.Root, err = filepath.Abs(root)
	if err != nil {
		return model.RunOptions{}, err
	}

	if flags.Changed("prefix") {
		opts.NamePrefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("exclude") {
		raw, _ := flags.GetString("exclude")
		opts.Excludes = strutil.SplitCSV(raw)
	}
	if flags.Changed("remote") {
		opts.RemoteName, _ = flags.GetString("remote")
	}

	opts.NoPull = boolFlagOr(flags, "no-pull", opts.NoPull)
	opts.SkipDirty = boolFlagOr(flags, "skip-dirty", opts.SkipDirty)
	opts.StashDirty = boolFlagOr(flags, "stash-dirty", opts.StashDirty)
	opts.UseRebase = boolFlagOr(flags, "use-rebase", opts.UseRebase)
	opts.FetchAllRemotes = boolFlagOr(flags, "fetch-all-remotes", opts.FetchAllRemotes)

	// Cobra rejects the flag pair; this catches a flag colliding with a
	// config toggle.
	if opts.SkipDirty && opts.StashDirty {
		return model.RunOptions{}, errors.New("--skip-dirty and --stash-dirty are mutually exclusive")
	}

	if flags.Changed("jobs") {
		opts.Jobs, _ = flags.GetInt("jobs")
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if flags.Changed("timeout") {
		seconds, _ := flags.GetInt("timeout")
		opts.Timeout = time.Duration(seconds) * time.Second
	}
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}
	if flags.Changed("fetch-retries") {
		opts.FetchRetries, _ = flags.GetInt("fetch-retries")
	}
	if opts.FetchRetries < 0 {
		opts.FetchRetries = 0
	}

	return opts, nil
}

// boolFlagOr returns the flag value when it was set on the command line,
// the fallback otherwise. An explicit --flag=false overrides a config true.
func boolFlagOr(flags *pflag.FlagSet, name string, fallback bool) bool {
	if flags.Changed(name) {
		v, _ := flags.GetBool(name)
		return v
	}
	return fallback
}
