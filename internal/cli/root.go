// Package cli implements furnishctl, the operator command line for the
// furniture catalog. Commands work directly against the configured store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"furniture-catalog/internal/budget"
	"furniture-catalog/internal/config"
	"furniture-catalog/internal/logger"
	"furniture-catalog/internal/store"
)

type globalFlags struct {
	envFile    string
	backend    string
	filePath   string
	sqlitePath string
	verbose    bool
}

// app is what every command needs once flags are parsed.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	engine  *budget.Engine
	backend *store.Backend
}

func (a *app) close() {
	if err := a.backend.Cleanup(); err != nil {
		a.log.Warn("closing store failed", "error", err)
	}
}

// withApp wraps a command body so it runs with an opened store that is
// closed again when the body returns.
type withApp func(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error

// NewRootCmd builds the furnishctl command tree writing to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	var flags globalFlags

	with := func(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()
			return fn(cmd, args, a)
		}
	}

	root := &cobra.Command{
		Use:           "furnishctl",
		Short:         "Furniture shopping list and budget tool",
		Long:          "Inspect the furniture budget, import bookmarks, suggest prices and export to CSV.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "Environment file to load before reading configuration")
	pf.StringVarP(&flags.backend, "backend", "b", "", "Store backend (memory, file, sqlite, postgres, redis); overrides STORE_BACKEND")
	pf.StringVar(&flags.filePath, "file", "", "JSON store path; overrides STORE_FILE_PATH")
	pf.StringVar(&flags.sqlitePath, "sqlite", "", "SQLite store path; overrides STORE_SQLITE_PATH")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newBudgetCmd(with),
		newRoomsCmd(with),
		newExportCmd(with),
		newImportCmd(with),
		newSuggestPricesCmd(with),
	)
	return root
}

func openApp(ctx context.Context, flags globalFlags) (*app, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	if flags.backend != "" {
		cfg.Store.Backend = flags.backend
	}
	if flags.filePath != "" {
		cfg.Store.FilePath = flags.filePath
	}
	if flags.sqlitePath != "" {
		cfg.Store.SQLitePath = flags.sqlitePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := "warn"
	if flags.verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{Level: level, Format: "text", Output: os.Stderr})

	backend, err := store.Open(ctx, cfg.StoreOptions(), log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &app{
		cfg:     cfg,
		log:     log,
		engine:  budget.NewEngine(backend.Store, budget.WithLogger(log)),
		backend: backend,
	}, nil
}

// Execute runs furnishctl and exits non-zero on failure.
func Execute() {
	root := NewRootCmd(os.Stdout)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}
