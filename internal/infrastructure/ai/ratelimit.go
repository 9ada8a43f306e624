package ai

import (
	"context"
	"fmt"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitedCategorizer throttles calls to a provider and wraps its failures as
// CATEGORIZATION_FAILED errors
type RateLimitedCategorizer struct {
	next    outbound.Categorizer
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewRateLimitedCategorizer allows requestsPerMin calls per minute with the given burst.
// A rate of zero or less disables throttling.
func NewRateLimitedCategorizer(next outbound.Categorizer, requestsPerMin, burst int, logger *zap.Logger) *RateLimitedCategorizer {
	limit := rate.Inf
	if requestsPerMin > 0 {
		limit = rate.Limit(float64(requestsPerMin) / 60)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedCategorizer{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.Named("categorizer-limiter"),
	}
}

var _ outbound.Categorizer = (*RateLimitedCategorizer)(nil)

// Name returns the wrapped provider's name
func (r *RateLimitedCategorizer) Name() string {
	return r.next.Name()
}

// Categorize waits for a token and forwards the call
func (r *RateLimitedCategorizer) Categorize(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("Categorization rate limited", zap.String("provider", r.next.Name()), zap.Error(err))
		return nil, errors.NewCategorizationError(r.next.Name(), fmt.Errorf("rate limiter error: %w", err))
	}

	assignments, err := r.next.Categorize(ctx, items)
	if err != nil {
		return nil, errors.NewCategorizationError(r.next.Name(), err)
	}
	return assignments, nil
}

// Unwrap returns the wrapped provider
func (r *RateLimitedCategorizer) Unwrap() outbound.Categorizer {
	return r.next
}
