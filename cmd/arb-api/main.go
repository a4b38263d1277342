package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openarbitrage/internal/api"
	"openarbitrage/internal/config"
	"openarbitrage/internal/eventlog"
	"openarbitrage/internal/game"
	"openarbitrage/internal/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx, "api")
		if err != nil {
			logger.Error("telemetry setup failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	sink, err := eventlog.Open(ctx, cfg.Events)
	if err != nil {
		logger.Error("event sink init failed", "sink", cfg.Events.Sink, "err", err)
		os.Exit(1)
	}
	defer sink.Close()

	var state *game.State
	if cfg.Seed != nil {
		state = game.NewState(*cfg.Seed, game.DefaultRules())
	} else if state, err = game.NewStateRandomSeed(game.DefaultRules()); err != nil {
		logger.Error("seed session failed", "err", err)
		os.Exit(1)
	}
	sess := game.NewSession(state, logger)

	server := api.New(logger, sess, sink)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("arbitrage api listening", "addr", cfg.Addr, "session_id", sess.ID(), "seed", state.Seed, "event_sink", cfg.Events.Sink)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
