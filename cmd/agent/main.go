package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/afmlabs/afm-agent/internal/api"
	"github.com/afmlabs/afm-agent/internal/config"
	"github.com/afmlabs/afm-agent/internal/db"
	"github.com/afmlabs/afm-agent/internal/engine"
	"github.com/afmlabs/afm-agent/internal/logging"
	"github.com/afmlabs/afm-agent/internal/state"
	"github.com/afmlabs/afm-agent/internal/store"
	"github.com/afmlabs/afm-agent/internal/ui"
	"github.com/afmlabs/afm-agent/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting afm agent", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	counters := store.NewCounters()
	kv := store.New(database.Conn(), counters)

	deviceID, err := ensureDeviceID(kv)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(kv)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                      AFM AGENT v0.1.0                     ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	workspace := state.NewWorkspace(kv, logger)
	eng := engine.New(workspace, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inbox := watcher.NewInboxWatcher(logging.WithComponent(logger, "inbox"))
	if err := inbox.Watch(ctx, cfg.InboxDir()); err != nil {
		logger.Warn("inbox watching disabled", "error", err)
	}
	defer inbox.Stop()

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Engine:    eng,
		Workspace: workspace,
		Store:     kv,
		Counters:  counters,
		Inbox:     inbox,
		ExportDir: cfg.ExportDir(),
		Logger:    logger,
		StartTime: startTime,
		DeviceID:  deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Logger: logger,
			Status: func() ui.Status {
				return ui.Status{
					Busy:      eng.Busy(),
					QueueLen:  len(workspace.Queue(context.Background())),
					UndoArmed: workspace.UndoSnapshot(context.Background()) != nil,
				}
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureDeviceID(kv store.Store) (string, error) {
	ctx := context.Background()

	existing, ok, err := kv.Get(ctx, "device_id")
	if err == nil && ok && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := kv.Set(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(kv store.Store) (string, error) {
	ctx := context.Background()

	existing, ok, err := kv.Get(ctx, api.AuthTokenKey)
	if err == nil && ok && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := kv.Set(ctx, api.AuthTokenKey, token); err != nil {
		return "", err
	}

	return token, nil
}
