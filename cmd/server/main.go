package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"reviewdesk/internal/app"
	"reviewdesk/internal/config"
	"reviewdesk/internal/ratelimit"
	"reviewdesk/internal/server"
	"reviewdesk/internal/util"
	"reviewdesk/pkg/ai"
	"reviewdesk/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := buildStore(cfg)
	if err != nil {
		fatal("failed to init store", err)
	}
	generator, err := buildGenerator(cfg)
	if err != nil {
		fatal("failed to init generator", err)
	}
	if cfg.Provider == "gemini" && cfg.GeminiAPIKey == config.PlaceholderAPIKey {
		slog.Warn("GEMINI_API_KEY not set; generation calls will fail and store placeholder content")
	}
	reviewer := ai.NewReviewer(generator, time.Duration(cfg.AITimeoutSeconds)*time.Second)

	appCore, err := app.New(app.Config{
		Store:    dataStore,
		Reviewer: reviewer,
	})
	if err != nil {
		fatal("failed to init app", err)
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		fatal("failed to parse trusted proxy cidrs", err)
	}
	var submitLimiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" && cfg.SubmitRateLimitPerMinute > 0 {
		submitLimiter, err = ratelimit.NewRedisFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "reviewdesk:submit",
			cfg.SubmitRateLimitPerMinute, time.Minute,
		)
		if err != nil {
			fatal("failed to init rate limiter", err)
		}
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		SubmitLimiter:  submitLimiter,
		TrustedProxies: trustedProxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("review server listening", "addr", addr, "provider", cfg.Provider)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func buildStore(cfg config.FileConfig) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		return store.NewGormStore(cfg.DatabaseURL)
	}
	return store.NewFileStore(cfg.DataFile)
}

func buildGenerator(cfg config.FileConfig) (ai.TextGenerator, error) {
	switch cfg.Provider {
	case "ollama":
		client := ai.NewOllamaClient(cfg.OllamaBaseURL)
		return ai.NewOllamaGenerator(client, cfg.GenerationModel), nil
	default:
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return ai.NewGeminiGenerator(client, cfg.GenerationModel), nil
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
