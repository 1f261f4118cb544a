// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kilka221/assistant/internal/config"
	"github.com/kilka221/assistant/internal/domain/ports/adapter"
	"github.com/kilka221/assistant/internal/domain/ports/repository"
	aiAdapters "github.com/kilka221/assistant/internal/infra/adapters/ai"
	"github.com/kilka221/assistant/internal/infra/db/postgres"
	"github.com/kilka221/assistant/internal/infra/db/sqlite"
	"github.com/kilka221/assistant/internal/infra/i18n"
	"github.com/kilka221/assistant/internal/infra/logging"
	"github.com/kilka221/assistant/internal/infra/metrics"
	red "github.com/kilka221/assistant/internal/infra/redis"
	"github.com/kilka221/assistant/internal/infra/web"
	"github.com/kilka221/assistant/internal/usecase"
)

var supportedLanguages = []string{"ru", "en"}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop completion provider, relaxed validation)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	metrics.MustRegister()

	// ---- Persistence (Postgres when configured, local SQLite otherwise) ----
	var store repository.SessionStore
	if cfg.Storage.PostgresURL != "" {
		pgStore, err := postgres.NewStore(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		logger.Info().Msg("persistence: postgres")
	} else {
		sqStore, err := sqlite.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite: %v", err)
		}
		defer sqStore.Close()
		store = sqStore
		logger.Info().Str("path", cfg.Storage.SQLitePath).Msg("persistence: sqlite")
	}

	// ---- Optional Redis bundle cache ----
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		store = red.NewCachedStore(store, redisClient, cfg.Redis.TTL)
		logger.Info().Msg("bundle cache: redis")
	}

	// ---- Completion adapter (dev noop -> Gemini -> OpenAI-compatible) ----
	var ai adapter.CompletionAdapter
	switch {
	case cfg.Runtime.Dev && cfg.AI.APIKey == "" && cfg.AI.GeminiKey == "":
		ai = aiAdapters.NewNoopAdapter()
		logger.Info().Msg("completion adapter: noop (dev)")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.GeminiModel).Msg("completion adapter: gemini")
	default:
		ai, err = aiAdapters.NewOpenAICompatAdapter(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
		if err != nil {
			log.Fatalf("completion adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.Model).Str("base", cfg.AI.BaseURL).Msg("completion adapter: openai-compatible")
	}
	ai = aiAdapters.NewLimitedCompletion(ai, cfg.AI.ConcurrentLimit)

	// ---- i18n ----
	translators := make(map[string]usecase.Translator, len(supportedLanguages))
	policies := make(map[string]string, len(supportedLanguages))
	for _, lang := range supportedLanguages {
		tr, err := i18n.NewTranslator(i18n.LocalesFS, lang)
		if err != nil {
			log.Fatalf("i18n %s: %v", lang, err)
		}
		translators[lang] = tr
		policies[lang] = tr.Policy()
	}

	// ---- Engine + web surface ----
	sessions := usecase.NewSessionManager(store, ai, translators, cfg.Chat.DefaultLanguage, cfg.Chat.FreeLimit, logger)
	identities := usecase.NewIdentityUseCase(store, sessions, logger)

	jwtSecret := cfg.Server.JWTSecret
	if jwtSecret == "" {
		logger.Warn().Msg("server.jwt_secret not set; using dev secret (INSECURE)")
		jwtSecret = "dev-secret-do-not-use"
	}
	auth := web.NewAuthManager(jwtSecret, cfg.Server.SecureCookie, cfg.Server.SessionTTL)
	server := web.NewServer(identities, sessions, policies, auth, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
