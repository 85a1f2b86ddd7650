// Package cli implements the hikelog command line on cobra.
//
// Every command goes through the same service layer as the HTTP API; the
// commands only parse flags, ask for confirmation and render results.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sakif/hikelog/internal/config"
	sqliteRepo "github.com/sakif/hikelog/internal/repository/sqlite"
	"github.com/sakif/hikelog/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	DBPath     string
	Format     string // "text" | "json" | "yaml"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// flagKeys maps flags to the config keys they override.
var flagKeys = map[string]string{
	"db":   "db.path",
	"port": "server.port",
}

// app is the state shared by every command of one invocation. The store is
// opened lazily so `hikelog token` and `--help` never touch the database.
type app struct {
	opts   *RootOptions
	cfg    *config.Config
	logger *slog.Logger
	out    *OutputFormatter
	now    func() time.Time

	db           *sqliteRepo.DB
	hikes        *service.HikeService
	observations *service.ObservationService
}

// NewRootCommand creates the root command for the hikelog CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newApp() *app {
	return &app{opts: &RootOptions{}, now: time.Now}
}

func newRootCommand(a *app) *cobra.Command {
	opts := a.opts

	cmd := &cobra.Command{
		Use:   "hikelog",
		Short: "hikelog - a personal log of hikes and trail observations",
		Long: `hikelog records hiking trips and the observations made along the way.

Configuration sources (highest precedence first):
  1. command line flags (--db, --port)
  2. environment variables (HIKELOG_DB_PATH, HIKELOG_SERVER_PORT, ...)
  3. hikelog.yaml in the current directory or $HOME/.hikelog (or --config)
  4. built-in defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			a.out = &OutputFormatter{
				Format:    opts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   opts.Verbose,
			}

			v := config.New(opts.ConfigFile)
			bindFlags(v, cmd)
			cfg, err := config.Load(v)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading configuration", err)
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log, cmd.Name() == "serve", opts.Verbose)
			a.out.VerboseLog("using database %s", cfg.DB.Path)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./hikelog.yaml or $HOME/.hikelog/hikelog.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides db.path)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newHikeCommand(a))
	cmd.AddCommand(newObservationCommand(a))
	cmd.AddCommand(newResetCommand(a))
	cmd.AddCommand(newTokenCommand(a))

	return cmd
}

// Execute runs the CLI with the given arguments and streams and returns the
// process exit code. main stays a one-liner and tests drive the whole CLI
// without a subprocess.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp()
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	// PersistentPostRun is skipped when RunE fails, so the store is closed here.
	if closeErr := a.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == nil {
		return ExitSuccess
	}

	out := a.out
	if out == nil {
		// Failed before PersistentPreRunE ran: unknown command, bad flag or
		// wrong argument count. All of those are usage errors.
		out = &OutputFormatter{Format: "text", Writer: stdout, ErrWriter: stderr}
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			err = WrapExitError(ExitCommandError, "usage", err)
		}
	}
	_ = out.Error(err)
	return GetExitCode(err)
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// newLogger builds the process logger from log.level and log.format.
//
// Only `serve` logs at the configured level. One-shot commands print their
// result on stdout, so their log floor is raised to warn unless --verbose.
func newLogger(w io.Writer, cfg config.LogConfig, serving, verbose bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	switch {
	case verbose:
		level = slog.LevelDebug
	case !serving && level < slog.LevelWarn:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// store opens the database on first use and builds the services.
func (a *app) store() error {
	if a.db != nil {
		return nil
	}

	path := a.cfg.DB.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	db, err := sqliteRepo.New(path, a.logger)
	if err != nil {
		if errors.Is(err, sqliteRepo.ErrLocked) {
			return WrapExitError(ExitFailure, "cannot open "+path, err)
		}
		return fmt.Errorf("opening database: %w", err)
	}

	a.db = db
	a.hikes = service.NewHikeService(db, a.logger)
	a.observations = service.NewObservationService(db, db, a.logger)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
