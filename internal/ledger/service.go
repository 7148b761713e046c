package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// RepositoryPort defines data access for open items.
type RepositoryPort interface {
	ListPartyOpenItems(ctx context.Context, partyID int64, currency string, status Status) ([]OpenItem, error)
	RebuildPartyOpenItems(ctx context.Context, partyID int64) error
}

// Service assembles the party view. A party whose first load comes back empty
// gets a one-shot backfill so legacy documents posted before open item
// tracking get their rows materialized; the flag prevents repeated rebuilds.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger

	mu      sync.Mutex
	rebuilt map[int64]bool
}

// NewService builds a Service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, rebuilt: make(map[int64]bool)}
}

// Load returns the open item view for a party. An empty status means
// everything unsettled (open and partial); an empty currency means all
// currencies.
func (s *Service) Load(ctx context.Context, partyID int64, currency string, status Status) (PartyView, error) {
	items, err := s.repo.ListPartyOpenItems(ctx, partyID, currency, status)
	if err != nil {
		return PartyView{}, err
	}

	if len(items) == 0 && s.markBackfill(partyID) {
		if err := s.repo.RebuildPartyOpenItems(ctx, partyID); err != nil {
			return PartyView{}, err
		}
		s.logger.Info("open items backfilled", "party_id", partyID)
		if items, err = s.repo.ListPartyOpenItems(ctx, partyID, currency, status); err != nil {
			return PartyView{}, err
		}
	}

	view := PartyView{PartyID: partyID}
	for _, it := range items {
		switch it.Direction {
		case DirectionDebit:
			view.Debits = append(view.Debits, it)
		case DirectionCredit:
			view.Credits = append(view.Credits, it)
		}
	}
	sortByEffectiveDate(view.Debits)
	sortByEffectiveDate(view.Credits)
	return view, nil
}

// markBackfill reports whether this party still has its one backfill
// available, consuming it.
func (s *Service) markBackfill(partyID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rebuilt[partyID] {
		return false
	}
	s.rebuilt[partyID] = true
	return true
}

// sortByEffectiveDate orders oldest first, id as a stable tie-break.
func sortByEffectiveDate(items []OpenItem) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i].EffectiveDate(), items[j].EffectiveDate()
		if di.Equal(dj) {
			return items[i].ID < items[j].ID
		}
		return di.Before(dj)
	})
}
