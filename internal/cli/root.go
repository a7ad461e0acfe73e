package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/fetrias/techtrack/internal/config"
	"github.com/fetrias/techtrack/internal/tech"
)

// RootOptions holds global flags for all commands, plus the state built
// from them before a subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
	Backend    string
	Database   string
	Key        string

	// Clock and TraceIDs default to the wall clock and UUIDv7 ids; tests pin them.
	Clock    tech.Clock
	TraceIDs TraceIDGenerator

	// LookupEnv reads environment overrides; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// Populated by PersistentPreRunE.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the techtrack CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(&RootOptions{})
}

// NewRootCommandWith creates the root command around opts. Zero-valued
// hooks in opts are filled with production defaults.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	if opts.Clock == nil {
		opts.Clock = tech.SystemClock{}
	}
	if opts.TraceIDs == nil {
		opts.TraceIDs = UUIDv7Generator{}
	}

	cmd := &cobra.Command{
		Use:   "techtrack",
		Short: "techtrack - track the technologies you are learning",
		Long: `Track technologies you are learning: status, notes, deadlines,
search, statistics, and JSON import/export.

Data lives in one collection stored in SQLite by default; Postgres, Redis
and an in-memory store are also available.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(opts, cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigFile, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	pf.StringVar(&opts.Backend, "backend", "", "storage backend (sqlite|postgres|redis|memory)")
	pf.StringVar(&opts.Database, "db", "", "path to SQLite database")
	pf.StringVar(&opts.Key, "key", "", "collection key")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewBulkUpdateCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewUpcomingCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewBackupsCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// setup validates global flags, loads configuration and builds the logger.
func setup(opts *RootOptions, cmd *cobra.Command) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	cfg, err := config.Load(config.LoadOptions{
		File:      opts.ConfigFile,
		DotEnv:    []string{".env"},
		LookupEnv: opts.LookupEnv,
	})
	if err != nil {
		return reportError(opts, cmd, err)
	}

	if opts.Backend != "" {
		cfg.Storage.Backend = opts.Backend
	}
	if opts.Database != "" {
		cfg.Storage.Path = opts.Database
	}
	if opts.Key != "" {
		cfg.Storage.Key = opts.Key
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return reportError(opts, cmd, err)
	}
	opts.Config = cfg

	opts.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
