package pantry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	outcomeApplied = "applied"
	outcomeFailed  = "failed"
	outcomeStale   = "stale"
)

// CategorizeVisible groups the active location's visible entries by AI-assigned
// category. Only item texts are sent to the categorizer. A failed call leaves the flat
// view in place and is reported as a notification; a result that arrives after the
// active location, filter or entries changed is discarded.
func (s *Service) CategorizeVisible(ctx context.Context) (*inbound.CategorizedView, []pantry.Notification, error) {
	s.mu.Lock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	active := s.active
	loc := active.Location
	if s.pending[loc] {
		s.mu.Unlock()
		return nil, nil, errors.NewOperationPendingError("categorization").
			WithMetadata("location", string(loc))
	}
	rows := deriveView(s.state[loc], active.Query, s.now())
	if len(rows) == 0 {
		s.mu.Unlock()
		return nil, []pantry.Notification{{
			Level:   pantry.NotificationInfo,
			Code:    pantry.NoticeCategorizationSkipped,
			Message: "There are no visible items to categorize.",
		}}, nil
	}
	s.pending[loc] = true
	generation := s.generation[loc]
	s.mu.Unlock()

	texts := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = row.Entry.Text
	}

	provider := "none"
	if s.categorizer != nil {
		provider = s.categorizer.Name()
	}
	ctx, span := s.tracer.Start(ctx, "pantry.categorize", trace.WithAttributes(
		attribute.String("pantry.location", string(loc)),
		attribute.String("pantry.provider", provider),
		attribute.Int("pantry.items", len(texts)),
	))
	defer span.End()

	start := time.Now()
	assignments, err := s.categorize(ctx, texts)
	duration := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, loc)

	completed := pantry.CategorizationCompletedEvent{
		Location:    loc,
		Provider:    provider,
		Items:       len(texts),
		Duration:    duration,
		CompletedAt: s.now(),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "categorization failed")
		s.logger.Warn("Categorization failed",
			zap.String("location", string(loc)),
			zap.String("provider", provider),
			zap.Error(err),
		)
		completed.Outcome = outcomeFailed
		s.dispatch(completed)
		return nil, []pantry.Notification{{
			Level:   pantry.NotificationWarning,
			Code:    pantry.NoticeCategorizationFailed,
			Message: "Could not categorize your items right now. Showing the plain list instead.",
		}}, nil
	}

	if s.active.Location != loc || s.active.Query != active.Query || s.generation[loc] != generation {
		s.logger.Info("Discarding stale categorization result", zap.String("location", string(loc)))
		span.SetAttributes(attribute.Bool("pantry.stale", true))
		completed.Outcome = outcomeStale
		s.dispatch(completed)
		return nil, []pantry.Notification{{
			Level:   pantry.NotificationInfo,
			Code:    pantry.NoticeCategorizationStale,
			Message: "Your items changed while they were being categorized. Please try again.",
		}}, nil
	}

	view := buildCategorizedView(loc, active.Query, rows, assignments)
	s.overlays[loc] = view
	completed.Outcome = outcomeApplied
	completed.Groups = len(view.Groups)
	s.dispatch(completed)

	s.logger.Info("Categorized pantry items",
		zap.String("location", string(loc)),
		zap.Int("groups", len(view.Groups)),
		zap.Int("omitted", view.Omitted),
		zap.Duration("duration", duration),
	)

	var notes []pantry.Notification
	if view.Omitted > 0 {
		notes = append(notes, pantry.Notification{
			Level:   pantry.NotificationInfo,
			Code:    pantry.NoticeCategorizationPartial,
			Message: fmt.Sprintf("%d item(s) could not be categorized and are hidden from the grouped view.", view.Omitted),
		})
	}
	return view.Clone(), notes, nil
}

func (s *Service) categorize(ctx context.Context, texts []string) ([]outbound.CategoryAssignment, error) {
	if s.categorizer == nil {
		return nil, errors.NewCategorizationError("none", fmt.Errorf("no categorizer configured"))
	}
	return s.categorizer.Categorize(ctx, texts)
}

// buildCategorizedView matches assignments back to rows by case-insensitive exact text.
// Groups appear in the order their first entry appears in the view; rows without a
// matching assignment are counted as omitted.
func buildCategorizedView(
	loc pantry.Location,
	query pantry.ViewQuery,
	rows []inbound.ViewEntry,
	assignments []outbound.CategoryAssignment,
) *inbound.CategorizedView {
	byText := make(map[string]string, len(assignments))
	for _, a := range assignments {
		key := pantry.NormalizeText(a.Ingredient)
		label := strings.TrimSpace(a.Category)
		if key == "" || label == "" {
			continue
		}
		if _, exists := byText[key]; !exists {
			byText[key] = label
		}
	}

	view := &inbound.CategorizedView{Location: loc, Query: query}
	index := make(map[string]int)
	for _, row := range rows {
		label, ok := byText[row.Entry.Key()]
		if !ok {
			view.Omitted++
			continue
		}
		gi, exists := index[label]
		if !exists {
			gi = len(view.Groups)
			index[label] = gi
			view.Groups = append(view.Groups, inbound.CategoryGroup{Label: label, Expanded: true})
		}
		view.Groups[gi].Entries = append(view.Groups[gi].Entries, row)
	}
	return view
}

// CategorizedView returns a copy of a location's categorized view, or nil when the flat
// list should be shown
func (s *Service) CategorizedView(location pantry.Location) *inbound.CategorizedView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlays[location].Clone()
}

// ToggleCategory flips the expanded flag of one group and returns the new value
func (s *Service) ToggleCategory(location pantry.Location, category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.overlays[location]
	if !ok {
		return false
	}
	group, ok := view.Group(category)
	if !ok {
		return false
	}
	group.Expanded = !group.Expanded
	return group.Expanded
}

// ClearCategorization drops a location's categorized view. A categorization still in
// flight for the location is discarded when it completes.
func (s *Service) ClearCategorization(location pantry.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked(location, false)
}
