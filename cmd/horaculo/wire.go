package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/horaculo/internal/analysis"
	"github.com/jask/horaculo/internal/config"
	"github.com/jask/horaculo/internal/database"
	"github.com/jask/horaculo/internal/database/repository"
	"github.com/jask/horaculo/internal/logging"
	"github.com/jask/horaculo/internal/prefs"
	"github.com/jask/horaculo/internal/secrets"
	"github.com/jask/horaculo/internal/service"
	"github.com/jask/horaculo/internal/session"
)

type app struct {
	cfg         config.Config
	logger      *zap.Logger
	db          *sql.DB
	controller  *session.Controller
	history     *service.HistoryService
	maintenance *service.MaintenanceService
	prefs       *prefs.Store
	defaultMode session.Mode
}

func wireApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	ctx := cmd.Context()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("mock") {
		cfg.API.Mock = flags.mock
	}

	logger, err := logging.New(cfg.Log, flags.verbose)
	if err != nil {
		return nil, err
	}

	db, err := database.Setup(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	history := &service.HistoryService{
		Searches:  repository.NewSearchRepo(db),
		Watchlist: repository.NewWatchlistRepo(db),
	}
	maintenance := &service.MaintenanceService{DB: db}
	if n, err := maintenance.PurgeCache(ctx, cfg.Cache.TTL); err != nil {
		logger.Warn("purge result cache", zap.Error(err))
	} else if n > 0 {
		logger.Debug("purged result cache", zap.Int64("rows", n))
	}

	token := cfg.API.Token
	if store, err := secrets.NewStore(""); err != nil {
		logger.Warn("open secrets store", zap.Error(err))
	} else if token, err = secrets.ResolveToken(cfg.API.TokenEnv, store, cfg.API.Token); err != nil {
		logger.Warn("read api token", zap.Error(err))
	}

	fetcher, err := analysis.New(analysis.Options{
		API:      cfg.API,
		Token:    token,
		CacheTTL: cfg.Cache.TTL,
		Cache:    repository.NewCacheRepo(db),
		Logger:   logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	controller := session.NewController(fetcher,
		session.WithLogger(logger.Named("session")),
		session.WithDelays(cfg.Workflow.FirstDelay, cfg.Workflow.SecondDelay),
		session.WithRecorder(history),
	)

	prefsStore, err := prefs.NewStore("")
	if err != nil {
		logger.Warn("open ui prefs", zap.Error(err))
		prefsStore = nil
	}

	mode, err := session.ParseMode(cfg.UI.DefaultMode)
	if err != nil {
		logger.Warn("ui.default_mode", zap.String("value", cfg.UI.DefaultMode), zap.Error(err))
		mode = session.ModeMacro
	}

	logger.Info("horaculo started",
		zap.Bool("mock", cfg.API.Mock),
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("db", cfg.Database.Path))

	return &app{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		controller:  controller,
		history:     history,
		maintenance: maintenance,
		prefs:       prefsStore,
		defaultMode: mode,
	}, nil
}

func (a *app) Close() {
	a.controller.Close()
	_ = a.db.Close()
	_ = a.logger.Sync()
}
