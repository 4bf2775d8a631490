package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/feedbacklens/backend/internal/ai"
	"github.com/feedbacklens/backend/internal/config"
	"github.com/feedbacklens/backend/internal/db"
	httpapi "github.com/feedbacklens/backend/internal/http"
	"github.com/feedbacklens/backend/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "feedbacklens-backend").Logger()

	ctx := context.Background()

	var store *db.Store
	if cfg.DatabaseURL != "" {
		store, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		defer store.Close()
	} else {
		logger.Info().Msg("DATABASE_URL not set, run history disabled")
	}

	if store != nil && cfg.RunRetention > 0 {
		go pruneLoop(ctx, store, cfg.RunRetention, logger)
	}

	analyzers := buildAnalyzers(cfg, logger)
	if _, ok := analyzers[cfg.AIProvider]; !ok {
		logger.Fatal().Str("provider", cfg.AIProvider).Msg("default AI provider is not configured")
	}

	var rowSource source.RowSource
	if cfg.CommentSourceURL == "" {
		rowSource = source.MockSource{}
		logger.Info().Msg("using mock comment source")
	} else {
		rowSource = source.HTTPSource{BaseURL: cfg.CommentSourceURL}
	}

	router := httpapi.Router(cfg, store, analyzers, rowSource, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("provider", cfg.AIProvider).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

// pruneLoop sweeps runs past the retention window once at startup and then
// daily for as long as the server lives.
func pruneLoop(ctx context.Context, store *db.Store, retention time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		pruned, err := store.PruneRuns(ctx, retention)
		if err != nil {
			logger.Warn().Err(err).Msg("run history prune failed")
		} else if pruned > 0 {
			logger.Info().Int64("pruned", pruned).Msg("pruned old runs")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// buildAnalyzers registers every provider the configuration can support.
// local and mock need no credentials and are always available; remote
// providers get the redis memoization layer when one is configured.
func buildAnalyzers(cfg config.Config, logger zerolog.Logger) map[string]ai.Analyzer {
	settings := ai.Settings{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
	}

	analyzers := map[string]ai.Analyzer{}
	for _, provider := range []string{"openai", "anthropic", "local", "mock"} {
		analyzer, err := ai.NewAnalyzer(provider, settings)
		if err != nil {
			logger.Info().Str("provider", provider).Msg("provider not configured, skipping")
			continue
		}
		if cfg.RedisURL != "" && (provider == "openai" || provider == "anthropic") {
			cached, err := ai.NewCachedAnalyzer(analyzer, cfg.RedisURL, cfg.CacheTTL, logger)
			if err != nil {
				logger.Warn().Err(err).Str("provider", provider).Msg("cache setup failed, running uncached")
			} else {
				analyzer = cached
			}
		}
		analyzers[provider] = analyzer
	}
	return analyzers
}
