package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"example.com/battlegrid/internal/api"
	"example.com/battlegrid/internal/match"
	"example.com/battlegrid/internal/script"
	"example.com/battlegrid/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, problems := loadConfig()
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	for _, p := range problems {
		log.Warn(p)
	}

	planner := script.DefaultPlanner(script.WithLogger(log))
	if cfg.FleetScript != "" {
		if planner, err = script.LoadPlanner(cfg.FleetScript, script.WithLogger(log)); err != nil {
			return err
		}
	}

	registry := match.NewRegistry(log)
	hub := ws.NewHub(registry, ws.Config{
		AllowOrigins: cfg.AllowOrigins,
		PingInterval: cfg.PingInterval,
		SendBuffer:   cfg.SendBuffer,
		Planner:      planner,
		Logger:       log,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	api.New(registry, log).Register(mux)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: cors(cfg.AllowOrigins, mux)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("server listening", zap.String("addr", srv.Addr), zap.String("fleet_script", planner.Name()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func cors(allow []string, next http.Handler) http.Handler {
	allowSet := map[string]struct{}{}
	for _, a := range allow {
		if a != "" {
			allowSet[a] = struct{}{}
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowSet[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
