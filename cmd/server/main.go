package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ugaemi/arena-server/internal/catalog"
	"github.com/ugaemi/arena-server/internal/config"
	"github.com/ugaemi/arena-server/internal/handler"
	"github.com/ugaemi/arena-server/internal/room"
	"github.com/ugaemi/arena-server/internal/store"
	"github.com/ugaemi/arena-server/internal/ws"
)

const shutdownTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	layouts, err := catalog.New(cfg.LayoutDir, cfg.LayoutFile)
	if err != nil {
		slog.Error("failed to load layout", "dir", cfg.LayoutDir, "file", cfg.LayoutFile, "error", err)
		os.Exit(1)
	}
	if cfg.WatchLayouts && cfg.LayoutDir != "" {
		watcher, err := catalog.NewWatcher(layouts)
		if err != nil {
			slog.Error("failed to watch layouts", "dir", cfg.LayoutDir, "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
		slog.Info("watching layouts", "dir", cfg.LayoutDir)
	}

	hub := ws.NewHub()
	rm := room.NewManager()
	router := handler.NewRouter(rm, st, layouts)
	rm.OnGameOver = router.RecordRun

	hub.OnMessage = router.HandleMessage
	hub.OnConnect = router.StartAuthTimeout
	hub.OnDisconnect = router.HandleDisconnect

	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/leaderboard", handler.LeaderboardHandler(st))
	mux.Handle("/runs", handler.AccountRunsHandler(st))
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(hub, w, r)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "layout", layouts.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	rm.StopAll(room.ReasonShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}

// openStore connects to PostgreSQL when a database URL is configured and
// falls back to an in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, accounts and runs are kept in memory")
		return store.NewMemoryStore(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pg, err := store.NewPostgresStore(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	slog.Info("connected to database")
	return pg, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleWebSocket upgrades the connection. ?encoding=msgpack selects binary
// game_state and game_event frames.
func handleWebSocket(hub *ws.Hub, w http.ResponseWriter, r *http.Request) {
	enc := ws.ParseEncoding(r.URL.Query().Get("encoding"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := ws.NewClient(hub.NextClientID(), hub, conn, enc)
	if !hub.Connect(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
