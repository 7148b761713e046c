// Package jobs runs the background work: open item backfills and the nightly
// auto settlement sweep.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/dukkan-erp/dukkan-erp/internal/observability"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerBackfill rebuilds a party's open item rows.
	TaskLedgerBackfill = "ledger:backfill"
	// TaskAutoSettle matches a party's open items oldest first.
	TaskAutoSettle = "settlement:auto"
)

// LedgerBackfillPayload names the party to rebuild.
type LedgerBackfillPayload struct {
	PartyID int64 `json:"party_id"`
}

// AutoSettlePayload names the party to sweep.
type AutoSettlePayload struct {
	PartyID int64 `json:"party_id"`
}

// Backfiller rebuilds open item rows.
type Backfiller interface {
	RebuildPartyOpenItems(ctx context.Context, partyID int64) error
}

// AutoSettler runs the oldest-first settlement sweep. It returns the created
// settlement id, zero when the party had nothing to match.
type AutoSettler interface {
	AutoSettle(ctx context.Context, partyID int64) (int64, error)
}

// NewLedgerBackfillTask constructs the backfill task.
func NewLedgerBackfillTask(payload LedgerBackfillPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerBackfill, data), nil
}

// NewAutoSettleTask constructs the auto settle task.
func NewAutoSettleTask(payload AutoSettlePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAutoSettle, data), nil
}

// Tasks bundles the task handlers with their dependencies.
type Tasks struct {
	Ledger  Backfiller
	Settler AutoSettler
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// HandleLedgerBackfill processes TaskLedgerBackfill.
func (t *Tasks) HandleLedgerBackfill(ctx context.Context, task *asynq.Task) error {
	var payload LedgerBackfillPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	err := t.Ledger.RebuildPartyOpenItems(ctx, payload.PartyID)
	t.record(TaskLedgerBackfill, err)
	if err != nil {
		t.Logger.Error("ledger backfill failed", "error", err, "party_id", payload.PartyID)
		return err
	}
	t.Logger.Info("ledger backfill done", "party_id", payload.PartyID)
	return nil
}

// HandleAutoSettle processes TaskAutoSettle.
func (t *Tasks) HandleAutoSettle(ctx context.Context, task *asynq.Task) error {
	var payload AutoSettlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	created, err := t.Settler.AutoSettle(ctx, payload.PartyID)
	t.record(TaskAutoSettle, err)
	if err != nil {
		t.Logger.Error("auto settle failed", "error", err, "party_id", payload.PartyID)
		return err
	}
	t.Logger.Info("auto settle done", "party_id", payload.PartyID, "settlement_id", created)
	return nil
}

func (t *Tasks) record(task string, err error) {
	if t.Metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.Metrics.JobRuns.WithLabelValues(task, outcome).Inc()
}
