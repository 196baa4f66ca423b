// Package cli implements the lifelog admin command line. Commands operate
// directly on the SQLite database through the same services as the HTTP API.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifelogapp/lifelog-server/internal/config"
	"github.com/lifelogapp/lifelog-server/internal/logger"
	"github.com/lifelogapp/lifelog-server/internal/service"
	"github.com/lifelogapp/lifelog-server/internal/store/sqlite"
	"github.com/lifelogapp/lifelog-server/internal/validation"
)

type app struct {
	dbPath  string
	tz      string
	verbose bool
	now     service.Clock
}

// env is an open database plus the services built on it.
type env struct {
	store *sqlite.Store
	logs  *service.LogService
	tags  *service.TagService
	srch  *service.SearchService
	stats *service.StatsService
	loc   *time.Location
}

func (e *env) Close() error {
	return e.store.Close()
}

// NewRootCommand builds the lifelog command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{now: time.Now})
}

func newRootCommand(a *app) *cobra.Command {
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, "Lifelog", "data", config.DatabaseFile)

	rootCmd := &cobra.Command{
		Use:           "lifelog",
		Short:         "Manage a lifelog database from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", defaultDB, "database path")
	rootCmd.PersistentFlags().StringVar(&a.tz, "tz", "UTC", "IANA timezone for days and display")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log service activity to stderr")

	rootCmd.AddCommand(a.addCmd())
	rootCmd.AddCommand(a.dayCmd())
	rootCmd.AddCommand(a.archiveCmd())
	rootCmd.AddCommand(a.showCmd())
	rootCmd.AddCommand(a.rmCmd())
	rootCmd.AddCommand(a.tagsCmd())
	rootCmd.AddCommand(a.searchCmd())
	rootCmd.AddCommand(a.statsCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.seedCmd())

	return rootCmd
}

// open opens the database, creating its directory and applying migrations.
func (a *app) open(cmd *cobra.Command) (*env, error) {
	loc, err := loadZone(a.tz)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(a.dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	log := a.logger(cmd.ErrOrStderr())
	st, err := sqlite.Open(a.dbPath, log)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	clock := service.WithClock(a.now)
	return &env{
		store: st,
		logs:  service.NewLogService(st, v, log, clock),
		tags:  service.NewTagService(st, v, log, clock),
		srch:  service.NewSearchService(st, log, clock),
		stats: service.NewStatsService(st, log, clock),
		loc:   loc,
	}, nil
}

func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	return logger.New(logger.Config{
		Writer: w,
		Format: "text",
		Level:  level,
	}).Logger
}
