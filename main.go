package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"whiteboardgo/internal/config"
	"whiteboardgo/internal/http/http_server"
	"whiteboardgo/internal/session"
	"whiteboardgo/internal/ws"

	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Session registry: the single in-memory authority for room state
	registry := session.NewRegistry()

	// 4. WebSockets hub + event router
	hub := ws.NewHub()
	wsSrv := ws.NewWsServer(hub, registry, cfg.AllowedOrigin)

	// 5. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, registry)

	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()

	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
