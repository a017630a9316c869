// Package cli is the conftrack command line: the web server plus the admin
// chores that have no web UI (migrations, accounts, events).
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/conftrack/internal/config"
	"github.com/sakif/conftrack/internal/logger"
	sqliteRepo "github.com/sakif/conftrack/internal/repository/sqlite"
)

// app is the state shared by every subcommand. It is filled in lazily so
// that --help works without a config file or database.
type app struct {
	configFile string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the conftrack command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "conftrack",
		Short:         "Conference tracking site",
		Long:          `conftrack serves the public pages and admin screens of a conference site and manages its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to config file (default: ./conftrack.yaml or ./configs/conftrack.yaml)")

	root.AddCommand(
		newServeCommand(a),
		newMigrateCommand(a),
		newUserCommand(a),
		newEventCommand(a),
	)
	return root
}

// Execute runs the command tree and returns the exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.New(logOut, cfg.Log.Level, cfg.Log.Format)
	return nil
}

// openDB opens the configured database, creating its directory first.
// migrate controls whether pending migrations are applied.
func (a *app) openDB(ctx context.Context, migrate bool) (*sqliteRepo.DB, error) {
	path := a.cfg.Database.Path
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	if migrate {
		return sqliteRepo.New(ctx, path)
	}
	return sqliteRepo.Open(path)
}
