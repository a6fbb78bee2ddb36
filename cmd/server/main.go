// Package main is the entry point for the oddlot batch purchase tracker.
// The service records odd-lot stock purchases grouped into batches, computes
// fee-aware profit and loss, and serves a JSON API for the web frontend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linyuchen/oddlot/internal/config"
	"github.com/linyuchen/oddlot/internal/database"
	"github.com/linyuchen/oddlot/internal/modules/ledger"
	ledgerhandlers "github.com/linyuchen/oddlot/internal/modules/ledger/handlers"
	"github.com/linyuchen/oddlot/internal/modules/marketdata"
	marketdatahandlers "github.com/linyuchen/oddlot/internal/modules/marketdata/handlers"
	"github.com/linyuchen/oddlot/internal/modules/planner"
	plannerhandlers "github.com/linyuchen/oddlot/internal/modules/planner/handlers"
	"github.com/linyuchen/oddlot/internal/modules/summary"
	summaryhandlers "github.com/linyuchen/oddlot/internal/modules/summary/handlers"
	"github.com/linyuchen/oddlot/internal/scheduler"
	"github.com/linyuchen/oddlot/internal/server"
	"github.com/linyuchen/oddlot/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.Port).
		Msg("Starting oddlot tracker")

	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "tracker",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Repositories
	settingsRepo := ledger.NewSettingsRepository(db.Conn(), log)
	batchRepo := ledger.NewBatchRepository(db.Conn(), log)
	positionRepo := ledger.NewPositionRepository(db.Conn(), log)

	// Market data collaborator and services
	lookup := marketdata.NewYahooClient(cfg.PriceBaseURL, cfg.PriceTimeout, log)
	refresher := marketdata.NewRefresher(batchRepo, positionRepo, lookup, log)
	summarySvc := summary.NewService(batchRepo, positionRepo, settingsRepo, log)
	plannerSvc := planner.NewService(lookup, settingsRepo, log)

	// HTTP handlers
	ledgerH := ledgerhandlers.NewHandler(settingsRepo, batchRepo, positionRepo, lookup, log)
	summaryH := summaryhandlers.NewHandler(summarySvc, log)
	plannerH := plannerhandlers.NewHandler(plannerSvc, log)
	marketdataH := marketdatahandlers.NewHandler(lookup, refresher, log)

	// Background price refresh
	sched := scheduler.New(log)
	if cfg.RefreshSchedule != "" {
		if err := sched.AddJob(cfg.RefreshSchedule, scheduler.NewRefreshJob(refresher, log)); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to schedule price refresh")
		}
	}
	sched.Start()

	srv := server.New(server.Config{
		Port:               cfg.Port,
		DevMode:            cfg.DevMode,
		Log:                log,
		DB:                 db,
		LedgerHandlers:     ledgerH,
		SummaryHandlers:    summaryH,
		PlannerHandlers:    plannerH,
		MarketDataHandlers: marketdataH,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
