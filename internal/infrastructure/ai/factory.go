package ai

import (
	"context"
	"fmt"

	"github.com/alchemorsel/pantry/internal/infrastructure/ai/gemini"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/pantry/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"go.uber.org/zap"
)

// NewCategorizer creates the configured provider behind a rate limiter and, when
// ai.cache_size is positive, a label cache. Provider "none" returns nil, which leaves
// categorization disabled.
func NewCategorizer(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (outbound.Categorizer, error) {
	var provider outbound.Categorizer
	switch cfg.Provider {
	case "none":
		logger.Info("Categorization disabled")
		return nil, nil
	case "", "mock":
		provider = NewKeywordCategorizer()
	case "ollama":
		provider = ollama.NewClient(ollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	case "openai":
		client, err := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		provider = client
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		provider = client
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	logger.Info("Categorization provider configured",
		zap.String("provider", provider.Name()),
		zap.Int("requests_per_min", cfg.RequestsPerMin))

	var categorizer outbound.Categorizer = NewRateLimitedCategorizer(provider, cfg.RequestsPerMin, cfg.BurstSize, logger)
	if cfg.CacheSize > 0 {
		categorizer = NewCachingCategorizer(categorizer, cfg.CacheSize, cfg.CacheTTL, logger)
	}
	return categorizer, nil
}
