package updaterepos

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hammy-pdi-dev/update-repos/internal/config"
	"github.com/hammy-pdi-dev/update-repos/internal/strutil"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: "init writes a config file with the built-in defaults, seeded with any scan\n" +
		"flags given on the command line. Without --config it lands as " + config.LocalConfigFilename + "\n" +
		"in the current directory, next to the tree it describes.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	addScanFlags(initCmd)
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfgPath, err := config.InitConfigPath(flagConfig, cwd)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("config already exists at %q (use --force to overwrite)", cfgPath)
	}

	cfg := config.DefaultConfig()
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root, _ = flags.GetString("root")
	}
	if flags.Changed("prefix") {
		cfg.NamePrefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("exclude") {
		raw, _ := flags.GetString("exclude")
		cfg.Exclude = strutil.SplitCSV(raw)
	}
	if flags.Changed("remote") {
		cfg.Defaults.RemoteName, _ = flags.GetString("remote")
	}

	if err := config.Save(&cfg, cfgPath); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath)
	return err
}
