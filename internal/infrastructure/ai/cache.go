package ai

import (
	"context"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// defaultCacheSize bounds the label cache when no positive size is configured
const defaultCacheSize = 1000

// CachingCategorizer remembers the category assigned to each item text so that a
// repeated categorization only sends unseen items to the provider
type CachingCategorizer struct {
	next   outbound.Categorizer
	labels *expirable.LRU[string, string]
	logger *zap.Logger
}

// NewCachingCategorizer keeps up to maxSize labels for ttl each. A ttl of zero keeps
// labels until they are evicted.
func NewCachingCategorizer(next outbound.Categorizer, maxSize int, ttl time.Duration, logger *zap.Logger) *CachingCategorizer {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}
	if ttl < 0 {
		ttl = 0
	}
	return &CachingCategorizer{
		next:   next,
		labels: expirable.NewLRU[string, string](maxSize, nil, ttl),
		logger: logger.Named("categorizer-cache"),
	}
}

var _ outbound.Categorizer = (*CachingCategorizer)(nil)

// Name returns the wrapped provider's name
func (c *CachingCategorizer) Name() string {
	return c.next.Name()
}

// Unwrap returns the wrapped provider
func (c *CachingCategorizer) Unwrap() outbound.Categorizer {
	return c.next
}

// Categorize answers cached items locally and forwards the rest. Items the provider
// leaves out are not cached and are asked for again next time.
func (c *CachingCategorizer) Categorize(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
	var (
		hits   []outbound.CategoryAssignment
		misses []string
	)
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := pantry.NormalizeText(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if label, ok := c.labels.Get(key); ok {
			hits = append(hits, outbound.CategoryAssignment{Ingredient: item, Category: label})
			continue
		}
		misses = append(misses, item)
	}

	c.logger.Debug("Categorization cache lookup",
		zap.Int("hits", len(hits)),
		zap.Int("misses", len(misses)),
	)
	if len(misses) == 0 {
		return hits, nil
	}

	fresh, err := c.next.Categorize(ctx, misses)
	if err != nil {
		return nil, err
	}
	for _, a := range fresh {
		key := pantry.NormalizeText(a.Ingredient)
		if key == "" || a.Category == "" {
			continue
		}
		c.labels.Add(key, a.Category)
	}
	return append(hits, fresh...), nil
}
