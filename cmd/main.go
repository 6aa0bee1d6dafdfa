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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"nexus/backend/internal/api/handler"
	"nexus/backend/internal/config"
	"nexus/backend/internal/guide"
	"nexus/backend/internal/llm"
	"nexus/backend/internal/peerhub"
	"nexus/backend/internal/safety"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires everything together and owns the server lifecycle, so deferred
// cleanup executes on every exit path and main stays trivially small.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	logger.Info().
		Int("port", cfg.Port).
		Str("ollama_host", cfg.OllamaHost).
		Str("ollama_model", cfg.OllamaModel).
		Str("env", cfg.AppEnv).
		Msg("starting nexus peer server (in-memory only, no persistence)")

	gate, err := safety.NewGate()
	if err != nil {
		return err
	}

	generator := llm.NewOllamaClient(cfg.OllamaHost, cfg.OllamaModel, logger)
	engine := guide.NewEngine(generator, logger)
	matcher := peerhub.NewMatcherService(logger)
	hub := peerhub.NewHubService(matcher, engine, gate, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	h := handler.NewHandler(hub, cfg, logger)
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/api/config", h.GetClientConfig)

	server := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newLogger builds the process logger: console output in development, JSON
// elsewhere, level taken from config.
func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	out := zerolog.New(os.Stdout)
	if cfg.IsDev() {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return out.Level(level).With().Timestamp().Logger()
}
