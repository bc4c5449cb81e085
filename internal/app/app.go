package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-file-tree/internal/config"
	"go-file-tree/internal/database"
	"go-file-tree/internal/event"
	"go-file-tree/internal/handler"
	"go-file-tree/internal/metrics"
	"go-file-tree/internal/repository"
	"go-file-tree/internal/router"
	"go-file-tree/internal/service"
	"go-file-tree/internal/store"
	"go-file-tree/internal/websocket"
)

type App struct {
	server       *http.Server
	hub          *websocket.Hub
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	var (
		treeStore    store.Store
		pinger       handler.Pinger
		cleanupFuncs []func()
	)

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(context.Background(), cfg.DatabaseURL, database.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.EnsureSchema(context.Background()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		treeStore = repository.NewTreeRepository(db.Pool)
		pinger = db
		cleanupFuncs = append(cleanupFuncs, db.Close)
		slog.Info("database ready")
	default:
		treeStore = store.NewMemory()
		slog.Info("using in-memory tree store")
	}

	m := metrics.New()
	bus := event.NewBus()
	hub := websocket.NewHub(bus)

	treeService := service.NewTreeService(treeStore, bus, m)

	appRouter := router.New(cfg, router.Handlers{
		Folder: handler.NewFolderHandler(treeService),
		File:   handler.NewFileHandler(treeService),
		Health: handler.NewHealthHandler(pinger),
	}, m, hub)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		hub:          hub,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go a.hub.Run(hubCtx)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			a.cleanup()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hubCancel()
	err := a.server.Shutdown(shutdownCtx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}
