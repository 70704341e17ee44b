package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/spdrive/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagDrive      string
	flagJSON       bool
	flagVerbose    bool
	flagDebug      bool
	flagQuiet      bool
)

// CLIFlags is a snapshot of the global flags for one invocation.
type CLIFlags struct {
	JSON    bool
	Verbose bool
	Debug   bool
	Quiet   bool
}

// CLIContext carries everything a subcommand needs after the root pre-run:
// the resolved configuration, where it came from, the logger, and the
// output streams.
type CLIContext struct {
	Cfg     *config.Config
	CfgPath string
	Flags   CLIFlags
	Logger  *slog.Logger
	Out     io.Writer
	Err     io.Writer
}

// Statusf prints a status message to stderr unless quiet mode is set.
func (cc *CLIContext) Statusf(format string, args ...any) {
	if !cc.Flags.Quiet {
		fmt.Fprintf(cc.Err, format, args...)
	}
}

type cliContextKey struct{}

// cliContextFrom returns the CLIContext stored by the root pre-run, if any.
func cliContextFrom(ctx context.Context) (*CLIContext, bool) {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	return cc, ok
}

// mustCLIContext is cliContextFrom for subcommands, which always run after
// the root pre-run.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc, ok := cliContextFrom(ctx)
	if !ok {
		panic("spdrive: command run without CLI context")
	}

	return cc
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spdrive",
		Short: "SharePoint document library client",
		Long: `A small client for SharePoint document libraries over Microsoft Graph.

It authenticates as an app registration (client credentials), finds the
configured site, and lists, downloads, and uploads files in its libraries.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().StringVar(&flagDrive, "drive", "", "document library name (overrides config)")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log each request")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newSiteCmd())
	cmd.AddCommand(newDrivesCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override chain
// and stores a CLIContext on the command's context for subcommands.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
	}

	// Only pass --drive to the resolver if the user explicitly set it.
	if cmd.Flags().Changed("drive") {
		drive := flagDrive
		cli.Drive = &drive
	}

	env, err := config.ReadEnvOverrides()
	if err != nil {
		return err
	}

	cfg, cfgPath, err := config.Resolve(env, cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := CLIFlags{
		JSON:    flagJSON,
		Verbose: flagVerbose,
		Debug:   flagDebug,
		Quiet:   flagQuiet,
	}

	cc := &CLIContext{
		Cfg:     cfg,
		CfgPath: cfgPath,
		Flags:   flags,
		Logger:  buildLogger(cfg, flags, cmd.ErrOrStderr()),
		Out:     cmd.OutOrStdout(),
		Err:     cmd.ErrOrStderr(),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))

	return nil
}

// logLevel maps the config log_level to a slog level. --debug, --verbose,
// and --quiet override it, in that order of precedence.
func logLevel(cfg *config.Config, flags CLIFlags) slog.Level {
	level := slog.LevelWarn

	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}

	switch {
	case flags.Debug:
		level = slog.LevelDebug
	case flags.Verbose:
		level = slog.LevelInfo
	case flags.Quiet:
		level = slog.LevelError
	}

	return level
}

// buildLogger creates the slog.Logger for one invocation. log_format "auto"
// picks text when w is a terminal and JSON otherwise, so piped output stays
// machine-readable.
func buildLogger(cfg *config.Config, flags CLIFlags, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(cfg, flags)}

	useJSON := cfg.LogFormat == "json"
	if cfg.LogFormat == "auto" {
		useJSON = !isTerminal(w)
	}

	if useJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
