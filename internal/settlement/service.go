package settlement

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/dukkan-erp/dukkan-erp/internal/observability"
)

// Request timeouts. Mutations get the longer budget; a slow load is cheap to
// retry, a slow posting is not.
const (
	mutateTimeout = 20 * time.Second
	loadTimeout   = 15 * time.Second
)

// ErrTimedOut marks a request that exceeded its watchdog budget. It is a
// distinct failure from a backend rejection: the operation may or may not
// have landed, so the caller retries with the same workspace intact.
var ErrTimedOut = errors.New("settlement: request timed out")

// RepositoryPort defines the settlement persistence surface.
type RepositoryPort interface {
	CreateSettlement(ctx context.Context, partyID int64, allocations []AllocationDraft, notes string) (int64, error)
	VoidSettlement(ctx context.Context, id int64, reason string) error
	ListRecent(ctx context.Context, partyID int64, limit int) ([]Settlement, error)
}

// Service posts and reverses settlements with a client-side watchdog on top
// of the store calls.
type Service struct {
	repo    RepositoryPort
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService builds a Service. Metrics may be nil.
func NewService(repo RepositoryPort, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, logger: logger, metrics: metrics}
}

// Create posts the workspace's drafts as one settlement document. The drafts
// are cleared only after the store confirms; any failure leaves the
// workspace untouched so the operator can retry or adjust.
func (s *Service) Create(ctx context.Context, ws *Workspace, notes string) (int64, error) {
	drafts := ws.Drafts()
	if len(drafts) == 0 {
		return 0, &GuardError{Msg: i18n.MsgNoAllocations}
	}

	ctx, cancel := context.WithTimeout(ctx, mutateTimeout)
	defer cancel()

	id, err := s.repo.CreateSettlement(ctx, ws.PartyID(), drafts, notes)
	if err != nil {
		s.logger.Error("create settlement failed",
			"error", err, "party_id", ws.PartyID(), "allocations", len(drafts))
		return 0, classify(ctx, err)
	}

	ws.Clear()
	if s.metrics != nil {
		s.metrics.SettlementsCreated.Inc()
	}
	s.logger.Info("settlement created",
		"settlement_id", id, "party_id", ws.PartyID(), "allocations", len(drafts))
	return id, nil
}

// Reverse voids a posted settlement, reopening the allocated amounts. The
// reason is mandatory and lands in the audit trail.
func (s *Service) Reverse(ctx context.Context, id int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return &GuardError{Msg: i18n.MsgReasonRequired}
	}

	ctx, cancel := context.WithTimeout(ctx, mutateTimeout)
	defer cancel()

	if err := s.repo.VoidSettlement(ctx, id, reason); err != nil {
		s.logger.Error("void settlement failed", "error", err, "settlement_id", id)
		return classify(ctx, err)
	}
	if s.metrics != nil {
		s.metrics.SettlementsVoided.Inc()
	}
	s.logger.Info("settlement voided", "settlement_id", id, "reason", reason)
	return nil
}

// Recent lists the party's latest settlements.
func (s *Service) Recent(ctx context.Context, partyID int64, limit int) ([]Settlement, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	out, err := s.repo.ListRecent(ctx, partyID, limit)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return out, nil
}

// classify separates watchdog expiry from genuine backend failures.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimedOut
	}
	return err
}
