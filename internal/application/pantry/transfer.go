package pantry

import (
	"context"
	"sort"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/domain/shared"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transfer moves or copies the entries at the given raw-list indices from the source
// location to the destination. Unlike AddItems no duplicate suppression is applied:
// transferred entries are appended as they are. Same, unknown or invalid arguments
// make the call a no-op.
func (s *Service) Transfer(ctx context.Context, req inbound.TransferRequest) (pantry.State, error) {
	return s.mutate(ctx, "transfer", func(next pantry.State) (mutation, bool) {
		if !req.Mode.Valid() || req.Source == req.Destination {
			return mutation{}, false
		}
		if !next.Has(req.Source) || !next.Has(req.Destination) {
			return mutation{}, false
		}

		remaining, transferred := planTransfer(next[req.Source], req.Indices, req.Mode)
		if len(transferred) == 0 {
			return mutation{}, false
		}
		next[req.Source] = remaining
		next[req.Destination] = append(next[req.Destination], transferred...)

		s.logger.Info("Transferred pantry items",
			zap.String("source", string(req.Source)),
			zap.String("destination", string(req.Destination)),
			zap.String("mode", string(req.Mode)),
			zap.Int("count", len(transferred)),
		)

		m := mutation{
			events: []shared.DomainEvent{pantry.EntriesTransferredEvent{
				Source:        req.Source,
				Destination:   req.Destination,
				Mode:          req.Mode,
				Count:         len(transferred),
				TransferredAt: s.now(),
			}},
			touched: []pantry.Location{req.Source, req.Destination},
		}
		if req.Mode == pantry.TransferModeMove {
			m.reindexed = []pantry.Location{req.Source}
		}
		return m, true
	})
}

// TransferSelected transfers the active location's selection and clears it on success
func (s *Service) TransferSelected(ctx context.Context, destination pantry.Location, mode pantry.TransferMode) (pantry.State, error) {
	s.mu.Lock()
	source := s.active.Location
	indices := sortedIndices(s.selections[source])
	s.mu.Unlock()

	state, err := s.Transfer(ctx, inbound.TransferRequest{
		Source:      source,
		Destination: destination,
		Indices:     indices,
		Mode:        mode,
	})
	if err != nil {
		return nil, err
	}

	if source != destination && mode.Valid() && len(indices) > 0 {
		s.ClearSelection(source)
	}
	return state, nil
}

// planTransfer computes the new source list and the entries to append to the
// destination. Indices are deduplicated and processed in ascending order; indices out
// of range are ignored. Moved entries keep their identifier, copies get a new one.
func planTransfer(source []pantry.Entry, indices []int, mode pantry.TransferMode) ([]pantry.Entry, []pantry.Entry) {
	valid := make([]int, 0, len(indices))
	seen := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(source) || seen[i] {
			continue
		}
		seen[i] = true
		valid = append(valid, i)
	}
	sort.Ints(valid)

	transferred := make([]pantry.Entry, 0, len(valid))
	for _, i := range valid {
		entry := source[i].Clone()
		if mode == pantry.TransferModeCopy {
			entry.ID = uuid.New()
		}
		transferred = append(transferred, entry)
	}

	if mode != pantry.TransferModeMove {
		return source, transferred
	}

	remaining := append([]pantry.Entry(nil), source...)
	for k := len(valid) - 1; k >= 0; k-- {
		i := valid[k]
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return remaining, transferred
}
