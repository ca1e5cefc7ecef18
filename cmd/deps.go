package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/ats-matcher/internal/ai"
	"github.com/spigell/ats-matcher/internal/ai/gemini"
	"github.com/spigell/ats-matcher/internal/ai/openai"
	"github.com/spigell/ats-matcher/internal/cache"
	"github.com/spigell/ats-matcher/internal/matching"
	"github.com/spigell/ats-matcher/internal/secrets"
	"github.com/spigell/ats-matcher/internal/store"
	"go.uber.org/zap"
)

func newStore(cfg StoreConfig, logger *zap.Logger) (store.Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	var primary store.Store
	switch driver {
	case store.DriverSample:
		return store.SampleStore{}, nil
	case "", store.DriverFile:
		primary = store.NewFileStore(cfg.Path)
	case store.DriverSQL:
		sql, err := store.OpenSQL(store.SQLConfig{
			Dialect: cfg.SQL.Dialect,
			DSN:     cfg.SQL.DSN,
			Debug:   cfg.SQL.Debug,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("opening sql store: %w", err)
		}
		primary = sql
	case store.DriverSupabase:
		key, err := secrets.Load(secrets.Source{
			Name:  "supabase api key",
			File:  cfg.Supabase.APIKeyFile,
			Env:   envSupabaseKey,
			Value: cfg.Supabase.APIKey,
		})
		if err != nil {
			return nil, err
		}
		client, err := store.NewSupabase(logger, cfg.Supabase.URL, key)
		if err != nil {
			return nil, err
		}
		if cfg.Supabase.UserAgent != "" {
			client.UserAgent = cfg.Supabase.UserAgent
		}
		if cfg.Supabase.PageSize > 0 {
			client.PageSize = cfg.Supabase.PageSize
		}
		primary = client
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}

	if !cfg.SampleFallback {
		return primary, nil
	}
	return store.NewFallbackStore(primary, store.SampleStore{}, logger), nil
}

// newGenerator builds the text generator for the configured provider.
func newGenerator(ctx context.Context, cfg AIConfig) (ai.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = openai.ProviderName
	}
	if provider != openai.ProviderName && provider != gemini.ProviderName {
		return nil, &ai.ConfigurationError{Provider: cfg.Provider, Reason: "unsupported ai provider"}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  provider + " api key",
		File:  cfg.APIKeyFile,
		Env:   envAIKey,
		Value: cfg.APIKey,
	})
	if err != nil {
		return nil, &ai.ConfigurationError{Provider: provider, Reason: err.Error()}
	}

	if provider == gemini.ProviderName {
		generator, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      apiKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return generator, nil
	}

	generator, err := openai.NewGenerator(openai.Config{
		APIKey:      apiKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}
	return generator, nil
}

// newScorer returns nil when AI scoring is disabled, which makes the
// orchestrator score everything heuristically.
func newScorer(ctx context.Context, config *Config, logger *zap.Logger) (matching.Scorer, error) {
	if !config.AI.Enabled {
		logger.Info("ai scoring is disabled, using the fallback algorithm only")
		return nil, nil
	}

	generator, err := newGenerator(ctx, config.AI)
	if err != nil {
		return nil, err
	}

	matcher := ai.NewMatcher(generator, logger, config.AI.MaxLogLength)
	if !config.Cache.Enabled {
		return matcher, nil
	}

	backend, err := newCacheStore(ctx, config.Cache, logger)
	if err != nil {
		return nil, err
	}
	return cache.NewScorer(matcher, backend, config.Cache.TTL, logger), nil
}

func newCacheStore(ctx context.Context, cfg CacheConfig, logger *zap.Logger) (cache.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", cache.DriverMemory:
		return cache.NewMemory(), nil
	case cache.DriverRedis:
		r := cache.NewRedis(cfg.Redis)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		// Cache errors never fail scoring, so an unreachable redis is only reported.
		if err := r.Ping(pingCtx); err != nil {
			logger.Warn("redis cache is unreachable", zap.String("address", cfg.Redis.Address), zap.Error(err))
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Driver)
	}
}

func newOrchestrator(scorer matching.Scorer, cfg MatchingConfig, logger *zap.Logger) *matching.Orchestrator {
	return matching.NewOrchestrator(scorer, matching.Config{
		Concurrency:       cfg.Concurrency,
		Timeout:           cfg.Timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, logger)
}
