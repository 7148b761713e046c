package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads open items from the party_open_items table kept current by
// posting triggers, with rebuild_party_open_items as the backfill escape
// hatch for documents that predate the triggers.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const openItemColumns = `
	id, party_id, direction, doc_type, doc_no, status, currency,
	base_amount, open_base, foreign_amount, open_foreign, occurred_at, due_at`

// ListPartyOpenItems returns the party's unsettled items. An empty status
// selects both open and partial rows; an empty currency selects all.
func (r *Repository) ListPartyOpenItems(ctx context.Context, partyID int64, currency string, status Status) ([]OpenItem, error) {
	query := "SELECT " + openItemColumns + `
		FROM party_open_items
		WHERE party_id = $1`
	args := []any{partyID}
	if status != "" {
		args = append(args, string(status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	} else {
		query += " AND status IN ('open', 'partial')"
	}
	if currency != "" {
		args = append(args, currency)
		query += fmt.Sprintf(" AND currency = $%d", len(args))
	}
	query += " ORDER BY COALESCE(due_at, occurred_at), id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OpenItem
	for rows.Next() {
		it, err := scanOpenItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// RebuildPartyOpenItems re-derives the party's open item rows from the
// document history.
func (r *Repository) RebuildPartyOpenItems(ctx context.Context, partyID int64) error {
	_, err := r.pool.Exec(ctx, "SELECT rebuild_party_open_items($1)", partyID)
	return err
}

func scanOpenItem(row pgx.Row) (OpenItem, error) {
	var (
		it       OpenItem
		base     pgtype.Numeric
		openBase pgtype.Numeric
		foreign  pgtype.Numeric
		openFgn  pgtype.Numeric
		dueAt    pgtype.Timestamptz
	)
	err := row.Scan(
		&it.ID, &it.PartyID, &it.Direction, &it.DocType, &it.DocNo, &it.Status,
		&it.Currency, &base, &openBase, &foreign, &openFgn,
		&it.OccurredAt, &dueAt,
	)
	if err != nil {
		return OpenItem{}, err
	}
	if it.BaseAmount, err = numericToDecimal(base); err != nil {
		return OpenItem{}, err
	}
	if it.OpenBase, err = numericToDecimal(openBase); err != nil {
		return OpenItem{}, err
	}
	if foreign.Valid {
		d, err := numericToDecimal(foreign)
		if err != nil {
			return OpenItem{}, err
		}
		it.ForeignAmt = &d
	}
	if openFgn.Valid {
		d, err := numericToDecimal(openFgn)
		if err != nil {
			return OpenItem{}, err
		}
		it.OpenForeign = &d
	}
	if dueAt.Valid {
		t := dueAt.Time
		it.DueAt = &t
	}
	return it, nil
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Decimal{}, errors.New("ledger: numeric is not a finite value")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
