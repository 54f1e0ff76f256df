package client

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	gosync "sync"
	"syscall"
	"time"

	"fibertrace/internal/app/client/config"
	"fibertrace/internal/utils/clock"
)

// App wires the offline store, the sync engine, the connectivity
// oracle and the job timer together for the CLI.
type App struct {
	config     *config.Config
	log        *slog.Logger
	httpClient *httpClient
	storage    Storage
	engine     *Engine
	oracle     *Oracle
	timer      *Timer
	clk        clock.Clock

	wg     gosync.WaitGroup
	cancel context.CancelFunc
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	httpCl, err := NewHTTPClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP client: %w", err)
	}

	var storage Storage
	sqliteStorage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("failed to initialize SQLite, falling back to memory", "error", err)
		storage = NewMemoryStorage()
	} else {
		storage = sqliteStorage
	}

	clk := clock.System{}
	app := &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		storage:    storage,
		clk:        clk,
	}

	app.engine = NewEngine(storage, httpCl, clk, log, cfg.DeviceID, app.Actor())
	app.oracle = NewOracle(httpCl, log, time.Duration(cfg.ProbeInterval)*time.Second)
	app.timer = NewTimer(storage, clk)

	return app, nil
}

// Actor is the identity stamped into change history: the configured
// technician name, or the device id when none is set.
func (a *App) Actor() string {
	if a.config.Technician != "" {
		return a.config.Technician
	}
	id := a.config.DeviceID
	if len(id) > 8 {
		id = id[:8]
	}
	return "device-" + id
}

// Run starts the background probing and auto-sync loops and blocks
// until a termination signal arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	go a.handleSignals()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.oracle.Run(ctx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.engine.AutoSync(ctx, a.oracle, time.Duration(a.config.SyncInterval)*time.Second)
	}()

	a.log.Info("client started",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"device", a.config.DeviceID,
	)

	a.wg.Wait()
	return nil
}

func (a *App) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	sig := <-sigChan
	a.log.Info("received shutdown signal", "signal", sig.String())

	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()

	if err := a.storage.Close(); err != nil {
		a.log.Warn("failed to close storage", "error", err)
	}
}

// CheckConnection runs a single health probe against the server.
func (a *App) CheckConnection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return a.httpClient.HealthCheck(ctx)
}

func (a *App) Config() *config.Config { return a.config }

func (a *App) Log() *slog.Logger { return a.log }

func (a *App) Sync() *Engine { return a.engine }

func (a *App) Connectivity() *Oracle { return a.oracle }

func (a *App) Timer() *Timer { return a.timer }
