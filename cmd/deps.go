package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/ai"
	"github.com/spigell/job-finder/internal/ai/gemini"
	"github.com/spigell/job-finder/internal/cache"
	"github.com/spigell/job-finder/internal/cache/redis"
	"github.com/spigell/job-finder/internal/collectors"
	"github.com/spigell/job-finder/internal/filtering"
	"github.com/spigell/job-finder/internal/logger"
	"github.com/spigell/job-finder/internal/secrets"
)

const redisPingTimeout = 3 * time.Second

func newSearchService(config *Config, logger *zap.Logger) *collectors.Service {
	registry := collectors.Registry(config.Collectors, logger)
	return collectors.NewService(registry, config.Collectors.Timeout, logger)
}

// newRelevance wires the orchestrator. Without a usable model the configured
// strategy is used for everything.
func newRelevance(ctx context.Context, config *Config, logger *zap.Logger) *filtering.Relevance {
	filterConfig := &filtering.Config{
		Strategy:         config.Relevance.Strategy,
		StrictMinResults: config.Relevance.StrictMinResults,
	}

	scorer, err := newAIScorer(ctx, config, logger)
	switch {
	case errors.Is(err, secrets.ErrNotConfigured):
		logger.Warn("gemini api key is not configured, using rule-based scoring",
			zap.String("hint", "set GOOGLE_API_KEY or GOOGLE_API_KEY_FILE"),
		)
	case err != nil:
		logger.Warn("ai scoring is unavailable, using rule-based scoring", zap.Error(err))
	}

	if scorer == nil {
		return filtering.NewRelevance(filterConfig, nil, logger)
	}
	return filtering.NewRelevance(filterConfig, scorer, logger)
}

func newAIScorer(ctx context.Context, config *Config, log *zap.Logger) (*ai.BatchScorer, error) {
	cfg := config.AI
	if !cfg.Enabled {
		log.Info("ai scoring is disabled")
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	aiLogger := logger.WithCommonFields(log, "gemini", cfg.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.FallbackModel,
		cfg.Gemini.MaxRetries, aiLogger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	evaluator := gemini.NewEvaluator(generator, cfg.Gemini.MaxLogLength, aiLogger)
	store := newCache(ctx, config.Cache, log)

	return ai.NewBatchScorer(evaluator, store, config.Relevance.BatchSize, aiLogger), nil
}

// newCache prefers a shared redis cache and falls back to process memory.
func newCache(ctx context.Context, cfg *CacheConfig, logger *zap.Logger) cache.Cache {
	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.TTL

	if cfg.RedisAddr == "" {
		return cache.NewMemory(opts)
	}

	opts.RedisURL = cfg.RedisAddr
	opts.RedisPassword = cfg.RedisPassword
	opts.RedisDB = cfg.RedisDB
	store := redis.New(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("redis is unavailable, caching scores in memory",
			zap.String("addr", cfg.RedisAddr),
			zap.Error(err),
		)
		_ = store.Close()
		return cache.NewMemory(opts)
	}

	logger.Info("caching scores in redis", zap.String("addr", cfg.RedisAddr))
	return store
}
