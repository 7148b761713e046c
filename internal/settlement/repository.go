package settlement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository posts settlements through SQL functions so the document, its
// allocation rows and the open item updates commit or roll back together.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSettlement calls create_settlement(party, allocations, notes).
func (r *Repository) CreateSettlement(ctx context.Context, partyID int64, allocations []AllocationDraft, notes string) (int64, error) {
	payload, err := json.Marshal(allocations)
	if err != nil {
		return 0, fmt.Errorf("marshal allocations: %w", err)
	}
	var id int64
	err = r.pool.QueryRow(ctx,
		"SELECT create_settlement($1, $2::jsonb, $3)",
		partyID, payload, notes,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// VoidSettlement calls void_settlement(id, reason).
func (r *Repository) VoidSettlement(ctx context.Context, id int64, reason string) error {
	_, err := r.pool.Exec(ctx, "SELECT void_settlement($1, $2)", id, reason)
	return err
}

// AutoSettle calls auto_settle_party_items(party), matching open items
// oldest-first until one side runs out. Used by the scheduled job. Returns
// the created settlement id, zero when the party had nothing to match.
func (r *Repository) AutoSettle(ctx context.Context, partyID int64) (int64, error) {
	var created pgtype.Int8
	err := r.pool.QueryRow(ctx,
		"SELECT auto_settle_party_items($1)", partyID,
	).Scan(&created)
	if err != nil {
		return 0, err
	}
	return settlementID(created), nil
}

// settlementID unwraps the nullable function result; the sweep returns NULL
// for parties with no offsetting items.
func settlementID(n pgtype.Int8) int64 {
	if !n.Valid {
		return 0
	}
	return n.Int64
}

// ListRecent returns the party's latest settlement documents.
func (r *Repository) ListRecent(ctx context.Context, partyID int64, limit int) ([]Settlement, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, party_id, doc_no, voided, COALESCE(notes, ''), created_at
		FROM settlements
		WHERE party_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		partyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Settlement
	for rows.Next() {
		var s Settlement
		if err := rows.Scan(&s.ID, &s.PartyID, &s.DocNo, &s.Voided, &s.Notes, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
