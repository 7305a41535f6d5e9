package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-learn/internal/api"
	"github.com/p-n-ai/pai-learn/internal/curriculum"
	"github.com/p-n-ai/pai-learn/internal/gamification"
	"github.com/p-n-ai/pai-learn/internal/leaderboard"
	"github.com/p-n-ai/pai-learn/internal/notify"
	"github.com/p-n-ai/pai-learn/internal/platform/cache"
	"github.com/p-n-ai/pai-learn/internal/platform/config"
	"github.com/p-n-ai/pai-learn/internal/platform/database"
	"github.com/p-n-ai/pai-learn/internal/platform/docstore"
	"github.com/p-n-ai/pai-learn/internal/profile"
	"github.com/p-n-ai/pai-learn/internal/quiz"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := build(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.Store.Backend, "leaderboard", cfg.Cache.Enabled)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// app is the wired server plus the connections it must release.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build connects the configured backends and assembles the HTTP handler.
// On error every connection opened so far is closed.
func build(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	bank, err := curriculum.Load(cfg.CurriculumPath)
	if err != nil {
		return nil, err
	}

	checks := map[string]api.HealthCheck{}
	opts := []gamification.Option{gamification.WithLocation(loc)}

	var store profile.Store
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return nil, err
		}
		pg, err := profile.NewPostgresStore(db.Pool)
		if err != nil {
			return nil, err
		}
		store = pg
		opts = append(opts, gamification.WithEventLogger(profile.NewPostgresEventLogger(db.Pool)))
		checks["database"] = db.HealthCheck

	case config.BackendMongo:
		ds, err := docstore.New(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ds.Close(closeCtx); err != nil {
				slog.Warn("closing mongo client", "error", err)
			}
		})
		store = profile.NewMongoStore(ds.Database)
		opts = append(opts, gamification.WithEventLogger(profile.NewMongoEventLogger(ds.Database)))
		checks["mongo"] = ds.HealthCheck

	default:
		slog.Warn("profiles are kept in memory and lost on restart")
		store = profile.NewMemoryStore()
	}

	var board *leaderboard.Board
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache.URL, cache.WithPoolSize(cfg.Cache.PoolSize))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = c.Close() })
		board = leaderboard.New(c.Client, loc)
		opts = append(opts, gamification.WithLeaderboard(board))
		checks["cache"] = c.HealthCheck
	}

	hub := notify.NewHub()
	opts = append(opts, gamification.WithNotifier(hub))

	srv := &api.Server{
		Catalog:   bank,
		Generator: quiz.NewGenerator(bank),
		Engine:    gamification.NewEngine(store, opts...),
		Signals:   hub,
		Checks:    checks,
		MaxCount:  cfg.Quiz.MaxCount,
	}
	// A nil *Board in the interface would not compare equal to nil.
	if board != nil {
		srv.Leaderboard = board
	}

	a.handler = srv.Handler()
	return a, nil
}
