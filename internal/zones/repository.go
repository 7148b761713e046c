package zones

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the zone does not exist.
var ErrNotFound = errors.New("zones: not found")

// Repository provides PostgreSQL backed reads for delivery zones.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const zoneColumns = `
	id, name_ar, name_en, is_active, delivery_fee, estimated_minutes,
	center_lat, center_lng, radius_m`

// List returns all zones in display order.
func (r *Repository) List(ctx context.Context) ([]DeliveryZone, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+zoneColumns+`
		FROM delivery_zones
		ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []DeliveryZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// Get returns a single zone by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*DeliveryZone, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+zoneColumns+`
		FROM delivery_zones
		WHERE id = $1`, id)
	z, err := scanZone(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func scanZone(row pgx.Row) (DeliveryZone, error) {
	var z DeliveryZone
	var lat, lng, radius pgtype.Float8
	err := row.Scan(
		&z.ID, &z.Name.Ar, &z.Name.En, &z.IsActive, &z.DeliveryFee,
		&z.EstimatedMinutes, &lat, &lng, &radius,
	)
	if err != nil {
		return DeliveryZone{}, err
	}
	if lat.Valid && lng.Valid && radius.Valid {
		z.Circle = &Circle{Lat: lat.Float64, Lng: lng.Float64, Radius: radius.Float64}
	}
	return z, nil
}
