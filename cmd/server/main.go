package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kf5fay/group-gifting/internal/auth"
	"github.com/kf5fay/group-gifting/internal/config"
	"github.com/kf5fay/group-gifting/internal/metrics"
	"github.com/kf5fay/group-gifting/internal/server"
	"github.com/kf5fay/group-gifting/internal/service"
	"github.com/kf5fay/group-gifting/internal/storage/sqlite"
	"github.com/kf5fay/group-gifting/pkg/logging"
)

func main() {
	logging.Setup()

	env, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(env.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", env.DBPath)

	m := metrics.New()
	groups := service.NewGroupService(store)
	manager := auth.NewManager(env.AdminPasswordHash, env.JWTSecret, env.TokenTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Retention sweep runs independently of request traffic; it only touches
	// documents already past the retention window, so it is safe alongside
	// ordinary reads and writes.
	sweeper := service.NewSweeper(groups, m, env.RetentionMaxAge, env.SweepInterval)
	go sweeper.Run(ctx)

	srv := server.New(groups, manager, m)

	// h2c allows HTTP/2 without TLS; the reverse proxy terminates TLS.
	handler := h2c.NewHandler(srv.Handler(), &http2.Server{})

	addr := fmt.Sprintf(":%s", env.Port)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down")
		httpServer.Shutdown(context.Background())
	}()

	slog.Info("Server starting", "address", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
