package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/memora/internal/config"
	"github.com/vytor/memora/internal/db"
	"github.com/vytor/memora/internal/logger"
	"github.com/vytor/memora/internal/repository/sqlite"
	"github.com/vytor/memora/internal/services"
)

// app holds what every subcommand needs once the database is open.
type app struct {
	cfg       config.Config
	database  *db.DB
	scheduler services.SchedulerService
	items     services.ItemService
	decks     services.DeckService
	now       func() time.Time
}

type rootOptions struct {
	configFile string
	dbPath     string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	var opts rootOptions

	rootCommand := &cobra.Command{
		Use:           "memoractl",
		Short:         "Administer the memora spaced-repetition store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.dbPath, "db", "", "database path, overrides db_path from config")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCommand.AddCommand(
		newMigrateCommand(&opts),
		newImportCommand(&opts),
		newDecksCommand(&opts),
		newStateCommand(&opts),
		newSetModeCommand(&opts),
		newSetLimitCommand(&opts),
		newHistoryCommand(&opts),
	)
	return rootCommand
}

// open loads configuration and opens the database with migrations applied.
func (o *rootOptions) open() (*app, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}

	level := logger.WARN
	if o.verbose {
		level = logger.DEBUG
	}
	logger.SetDefault(logger.New(logger.WithLevel(level), logger.WithColors(true)))

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("db.Open(%s) > %w", cfg.DBPath, err)
	}

	store := sqlite.NewStore(database.DB)
	return &app{
		cfg:      cfg,
		database: database,
		scheduler: services.NewSchedulerService(store, services.SchedulerSettings{
			Memory:      cfg.Scheduler.Memory(),
			Location:    cfg.Location(),
			DefaultDeck: cfg.DefaultDeckName,
		}, nil, nil),
		items: services.NewItemService(store, cfg.Scheduler.ItemDefaults(), cfg.DefaultDeckName),
		decks: services.NewDeckService(store),
		now:   time.Now,
	}, nil
}

func (a *app) Close() error {
	return a.database.Close()
}

// withApp opens the app for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := o.open()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}
