package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"notesvc/config"
	"notesvc/config/database"
	"notesvc/internal/note/repository"
	"notesvc/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCmd builds the command tree. Running it without a subcommand serves HTTP.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "notesvc",
		Short:         "HTTP service for a single collection of unique text notes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: a.runServe,
	}

	flags := root.PersistentFlags()
	flags.String("addr", ":8080", "HTTP listen address")
	flags.String("db-driver", config.DriverSQLite, "database driver: sqlite3 or postgres")
	flags.String("db-dsn", "notes.db", "sqlite file path, :memory:, or postgres connection URL")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-file", "", "also write logs to this rotating file")
	flags.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")

	for key, flag := range map[string]string{
		"addr":             "addr",
		"db.driver":        "db-driver",
		"db.dsn":           "db-dsn",
		"log.level":        "log-level",
		"log.file":         "log-file",
		"shutdown_timeout": "shutdown-timeout",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %q: %v", flag, err))
		}
	}

	root.AddCommand(newServeCmd(a), newMigrateCmd(a))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		logger.Sugar.Errorf("notesvc: %v", err)
		logger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	if err := config.LoadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	return logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

// openStore opens the database and makes sure the notes table exists.
// The caller closes the returned handle.
func (a *app) openStore(ctx context.Context) (*sql.DB, *repository.NoteRepository, error) {
	dialect, err := repository.DialectFor(a.cfg.DB.Driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(ctx, a.cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewNoteRepository(db, dialect)
	if err := repo.Initialize(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, repo, nil
}
