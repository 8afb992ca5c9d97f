package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hotspotd/internal/adapter/control"
	adapthttp "hotspotd/internal/adapter/http"
	"hotspotd/internal/adapter/memory"
	"hotspotd/internal/adapter/postgres"
	"hotspotd/internal/adapter/routeros"
	"hotspotd/internal/app"
	"hotspotd/internal/config"
	"hotspotd/internal/domain"
	"hotspotd/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	device := routeros.New(cfg.DeviceAddress, cfg.DeviceUsername, cfg.DevicePassword, cfg.DeviceTimeout)
	sessions := app.NewSessionService(device)
	commands := app.NewCommandService(sessions)

	var opts []control.Option
	switch {
	case cfg.ControlTokenURL != "":
		opts = append(opts, control.WithClientCredentials(cfg.ControlTokenURL, cfg.ControlClientID, cfg.ControlClientSecret))
	case cfg.ControlUsername != "":
		opts = append(opts, control.WithBasicAuth(cfg.ControlUsername, cfg.ControlPassword))
	}
	ctrl := control.New(cfg.ControlServerURL, cfg.DeviceID, opts...)

	var journal domain.CommandJournal = memory.NewJournal()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer func() { _ = db.Close() }()
		journal = db
	}

	poller := app.NewPoller(ctrl, commands, journal, cfg.DeviceID, cfg.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go poller.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: adapthttp.New(cfg.DeviceID, poller).Handler(),
	}
	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr, "device_id", cfg.DeviceID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "err", err)
	}
}
