package pricing

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository resolves item pricing through the store's SQL functions. The
// tier/price logic itself lives server-side and is opaque here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ItemPrice calls get_item_price(item, customer, quantity).
func (r *Repository) ItemPrice(ctx context.Context, itemID int64, customerID *int64, quantity float64) (float64, error) {
	var price float64
	err := r.pool.QueryRow(ctx,
		"SELECT get_item_price($1, $2, $3)",
		itemID, nullableID(customerID), quantity,
	).Scan(&price)
	return price, err
}

// ItemDiscount calls get_item_discount(item, customer, quantity).
func (r *Repository) ItemDiscount(ctx context.Context, itemID int64, customerID *int64, quantity float64) (float64, error) {
	var pct float64
	err := r.pool.QueryRow(ctx,
		"SELECT get_item_discount($1, $2, $3)",
		itemID, nullableID(customerID), quantity,
	).Scan(&pct)
	return pct, err
}

func nullableID(id *int64) pgtype.Int8 {
	if id == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *id, Valid: true}
}
