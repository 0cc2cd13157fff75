package cmd

import (
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/lmsctl/config"
)

const defaultRepository = "s0up4200/lmsctl"

var checkOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update lmsctl to the latest release",
	Long:  `Check GitHub for a newer release and replace the running binary with it.`,
	// update works without a usable LMS configuration
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg := config.LoggingConfig{Level: "info", Format: "console", Color: true}
		if loaded, err := config.Load(cfgFile); err == nil {
			cfg = loaded
			logCfg = loaded.Logging
		}
		logger = setupLogger(logCfg, os.Stderr)
		return nil
	},
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot update a development build (version %q)", version)
	}

	repository := defaultRepository
	if cfg != nil && cfg.Update.Repository != "" {
		repository = cfg.Update.Repository
	}

	ctx := commandContext(cmd)
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repository))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repository)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Fprintf(out, "lmsctl %s is up to date.\n", current)
		return nil
	}

	if checkOnly {
		fmt.Fprintf(out, "Update available: %s -> %s\n", current, latest.Version())
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}

	logger.Info().Str("from", current.String()).Str("to", latest.Version()).Str("asset", latest.AssetName).Msg("Updating")
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Fprintf(out, "✓ Updated to %s\n", latest.Version())
	if latest.ReleaseNotes != "" {
		fmt.Fprintf(out, "\nRelease notes:\n%s\n", latest.ReleaseNotes)
	}
	return nil
}
