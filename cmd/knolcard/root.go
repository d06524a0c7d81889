package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolcard/internal/config"
	"github.com/conorfennell/knolcard/internal/logging"
	"github.com/conorfennell/knolcard/internal/sm2"
	"github.com/conorfennell/knolcard/internal/storage"
)

// clock is the scheduler's time source.
var clock = time.Now

// app carries what every command needs once flags are parsed.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *storage.DB
	scheduler *sm2.Scheduler
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "knolcard",
		Short:         "Korean-English flashcards with spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("db", "knolcard.db", "Path to the SQLite database file (overrides KNOLCARD_DATABASE__PATH)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newEditCmd(a),
		newImportCmd(a),
		newDeleteCmd(a),
		newPostponeCmd(a),
		newCollectionsCmd(a),
		newGrammarCmd(a),
		newStatusCmd(a),
		newReviewCmd(a),
	)

	return root, a
}

func (a *app) open(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.Setup(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	logger.Debug("database opened", "path", cfg.Database.Path)

	params := cfg.Scheduler
	a.cfg = cfg
	a.logger = logger
	a.db = db
	a.scheduler = sm2.NewScheduler(&params).WithClock(clock)
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
