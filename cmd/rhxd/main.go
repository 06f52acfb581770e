// rhxd is a Hotline Connect protocol server.
//
// It accepts client connections over TCP, dispatches login and chat
// transactions, fans out roster and chat events to the active session
// pool, and exposes a read-only HTTP monitoring surface alongside
// optional MQTT telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DaCodeChick/rhxd/internal/api"
	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/config"
	"github.com/DaCodeChick/rhxd/internal/db"
	"github.com/DaCodeChick/rhxd/internal/monitor"
	"github.com/DaCodeChick/rhxd/internal/netsrv"
	"github.com/DaCodeChick/rhxd/internal/session"
	"github.com/DaCodeChick/rhxd/internal/telemetry"
	"github.com/DaCodeChick/rhxd/internal/util"
)

const (
	AppName    = "rhxd"
	AppVersion = "1.0.0"
	Banner     = `
  _____  _    _  __  __ ____
 |  __ \| |  | | \ \/ /|  _ \
 | |__) | |__| |  \  / | | | |
 |  _  /|  __  |  /  \ | | | |
 | | \ \| |  | | / /\ \| |_| |
 |_|  \_\_|  |_|/_/  \_\____/  v%s
 Hotline Connect protocol server
`
)

func main() {
	fmt.Printf(Banner, AppVersion)
	fmt.Println()

	if err := util.InitLogger(util.DefaultLogConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("version", AppVersion).
		Str("platform", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Int("cpus", runtime.NumCPU()).
		Msg("starting rhxd")

	cfg, err := config.Load(config.DefaultConfigDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logSnap := cfg.Snapshot().Logging
	if err := util.InitLogger(util.LogConfigFrom(logSnap.Level, logSnap.Directory, logSnap.MaxSizeMB, logSnap.MaxBackups)); err != nil {
		log.Warn().Err(err).Msg("failed to reconfigure logger, using defaults")
	}

	validation := config.Validate(cfg)
	for _, w := range validation.Warnings {
		log.Warn().Str("field", w.Field).Msg(w.Message)
	}
	if !validation.IsValid() {
		for _, e := range validation.Errors {
			log.Error().Str("field", e.Field).Msg(e.Message)
		}
		log.Fatal().Msg("configuration validation failed, please fix the errors above")
	}

	sysInfo := util.GetSystemInfo()
	log.Info().
		Str("hostname", sysInfo.Hostname).
		Str("os", sysInfo.OS).
		Str("cpu", sysInfo.CPUModel).
		Int("cores", sysInfo.CPUCores).
		Uint64("memory_mb", sysInfo.TotalMemory).
		Msg("system information")

	snap := cfg.Snapshot()
	accounts, err := db.OpenSQLiteStore(snap.AccountDBPath, snap.DefaultGuestAccess, snap.DefaultAdminAccess)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open account database")
	}

	registry := session.NewRegistry(snap.MaxConnections)
	hub := broadcast.NewHub(registry)

	listener := netsrv.NewListener(cfg, registry, hub, accounts)
	reporter := monitor.NewReporter(registry, hub, monitor.DefaultInterval)

	var apiServer *api.Server
	if snap.API.Enabled {
		apiServer = api.NewServer(cfg, registry, hub)
	}

	var mqttHandler *telemetry.MQTTHandler
	if snap.MQTT.Enabled {
		mqttHandler, err = telemetry.NewMQTTHandler(cfg, registry, hub)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize MQTT, telemetry disabled")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info().Msg("starting session listener")
		if err := listener.Start(ctx); err != nil {
			log.Error().Err(err).Msg("session listener failed")
			errCh <- fmt.Errorf("session listener: %w", err)
		}
	}()

	if apiServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Msg("starting monitoring API")
			if err := apiServer.Start(ctx); err != nil {
				log.Warn().Err(err).Msg("monitoring API failed (non-fatal)")
			}
		}()
	}

	if mqttHandler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info().Msg("starting MQTT telemetry")
			if err := mqttHandler.Start(ctx); err != nil {
				log.Warn().Err(err).Msg("MQTT telemetry failed")
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		reporter.Run(ctx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		log.Error().Err(err).Msg("critical error, initiating shutdown")
	}

	log.Info().Msg("initiating graceful shutdown...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info().Msg("all tasks stopped gracefully")
	case <-time.After(30 * time.Second):
		log.Warn().Msg("shutdown timed out after 30 seconds, forcing exit")
	}

	if err := accounts.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close account database")
	}

	log.Info().Msg("rhxd stopped")
}
