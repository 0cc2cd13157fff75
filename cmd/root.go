package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/lmsctl/config"
	"github.com/s0up4200/lmsctl/dispatch"
	"github.com/s0up4200/lmsctl/lms"
	"github.com/s0up4200/lmsctl/oauth"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *lms.Client

	version   = "dev"
	buildTime = "unknown"

	// Command flags
	jsonOutput bool
	noCache    bool
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lmsctl",
	Short: "A command line client for the training registry service",
	Long: `lmsctl talks to a training registry web service: it browses the node
directory, lists qualifications and activities, and assigns training.

Listing commands accept --filter expressions, either inline or by the name
of a preset from the filter section of the config file.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// SetVersion records build information shown by --version and used by update.
func SetVersion(v, built string) {
	if v != "" {
		version = v
	}
	if built != "" {
		buildTime = built
	}
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable lookup caching")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "HTTP timeout (overrides lms.timeout)")

	rootCmd.AddCommand(testCmd)
}

// initializeApp loads the configuration and creates the client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, os.Stderr)

	if cmd.Flags().Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if cmd.Flags().Changed("timeout") {
		cfg.LMS.Timeout = timeout
	}

	client, err = newClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create LMS client: %w", err)
	}
	return nil
}

func newClient(cfg *config.Config, logger zerolog.Logger) (*lms.Client, error) {
	creds := oauth.Credentials{
		Identity:           cfg.LMS.Username,
		SharedSecret:       cfg.LMS.SharedSecret,
		SecondarySecretKey: cfg.LMS.SecretKey,
	}

	dispatchOpts := []dispatch.Option{dispatch.WithTimeout(cfg.LMS.Timeout)}
	if cfg.LMS.UserAgent != "" {
		dispatchOpts = append(dispatchOpts, dispatch.WithUserAgent(cfg.LMS.UserAgent))
	}

	return lms.NewClient(cfg.LMS.URL, creds, logger,
		lms.WithDispatchOptions(dispatchOpts...),
		lms.WithCache(cfg.Cache.Enabled),
		lms.WithInvalidateOnWrite(cfg.Cache.InvalidateOnWrite),
		lms.WithConcurrency(cfg.LMS.Concurrency),
		lms.WithPingUploader(cfg.LMS.PingUploader),
	)
}

// setupLogger configures the zerolog logger. Colour is only used when out
// is a terminal.
func setupLogger(cfg config.LoggingConfig, out *os.File) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(out).With().Timestamp().Logger()
	}

	return zerolog.New(consoleWriter(out, cfg.Color && isTerminal(out))).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to the training registry",
	Long:  `Check that the configured credentials are accepted and, optionally, that the content uploader answers.`,
	RunE:  runTest,
}

var testUploader bool

func init() {
	testCmd.Flags().BoolVar(&testUploader, "uploader", false, "also ping the content uploader")
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := commandContext(cmd)

	fmt.Fprintf(out, "Testing connection to %s...\n", cfg.LMS.URL)
	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection failed: %s", describeError(err))
	}
	fmt.Fprintln(out, "✓ Connection successful!")

	if testUploader {
		if err := client.PingUploader(ctx); err != nil {
			return fmt.Errorf("content uploader unreachable: %s", describeError(err))
		}
		fmt.Fprintln(out, "✓ Content uploader reachable!")
	}

	fmt.Fprintf(out, "\nCaching: %s\n", boolToStatus(cfg.Cache.Enabled))
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func boolToStatus(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

// describeError adds the server's own message to errors that carry one.
func describeError(err error) string {
	msg := dispatch.ServerMessage(err)
	if msg == "" {
		return err.Error()
	}
	return fmt.Sprintf("%v (server: %s)", err, msg)
}
