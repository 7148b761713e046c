package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
)

// Repository writes orders through the create_order SQL function so line
// items, totals and loyalty side effects commit in one transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type orderLinePayload struct {
	ItemID   int64   `json:"item_id"`
	UnitType string  `json:"unit_type"`
	Quantity float64 `json:"quantity"`
	Weight   float64 `json:"weight,omitempty"`
	Addons   []struct {
		AddonID  int64   `json:"addon_id"`
		Quantity float64 `json:"quantity"`
	} `json:"addons,omitempty"`
}

type orderPayload struct {
	CustomerID   int64              `json:"customer_id,omitempty"`
	Name         string             `json:"name"`
	Phone        string             `json:"phone"`
	AddressText  string             `json:"address_text"`
	Lat          *float64           `json:"lat,omitempty"`
	Lng          *float64           `json:"lng,omitempty"`
	ZoneID       int64              `json:"zone_id"`
	Payment      PaymentDetails     `json:"payment"`
	ScheduledAt  *time.Time         `json:"scheduled_at,omitempty"`
	CouponCode   string             `json:"coupon_code,omitempty"`
	RedeemPoints bool               `json:"redeem_points"`
	Notes        string             `json:"notes,omitempty"`
	Lines        []orderLinePayload `json:"lines"`
	Totals       totalsPayload      `json:"totals"`
}

type totalsPayload struct {
	Subtotal         float64 `json:"subtotal"`
	CouponDiscount   float64 `json:"coupon_discount"`
	ReferralDiscount float64 `json:"referral_discount"`
	TierDiscount     float64 `json:"tier_discount"`
	PointsDiscount   float64 `json:"points_discount"`
	DeliveryFee      float64 `json:"delivery_fee"`
	Total            float64 `json:"total"`
	Degraded         bool    `json:"degraded"`
}

// CreateOrder calls create_order(key, payload). The key makes retries after a
// timeout idempotent: the function returns the already-created order id.
func (r *Repository) CreateOrder(ctx context.Context, key uuid.UUID, in OrderInput, totals pricing.CheckoutTotals) (int64, error) {
	payload, err := json.Marshal(buildPayload(in, totals))
	if err != nil {
		return 0, fmt.Errorf("marshal order payload: %w", err)
	}
	var orderID int64
	err = r.pool.QueryRow(ctx,
		"SELECT create_order($1, $2::jsonb)",
		key, payload,
	).Scan(&orderID)
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// PaymentTargets lists the configured transfer recipients.
func (r *Repository) PaymentTargets(ctx context.Context) ([]PaymentTarget, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, method, name FROM payment_targets WHERE is_active ORDER BY sort_order, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentTarget
	for rows.Next() {
		var t PaymentTarget
		if err := rows.Scan(&t.ID, &t.Method, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func buildPayload(in OrderInput, totals pricing.CheckoutTotals) orderPayload {
	p := orderPayload{
		CustomerID:   in.Customer.ID,
		Name:         in.Customer.Name,
		Phone:        in.Customer.Phone,
		AddressText:  in.AddressText,
		ZoneID:       in.ZoneID,
		Payment:      in.Payment,
		ScheduledAt:  in.ScheduledAt,
		RedeemPoints: in.RedeemPoints,
		Notes:        in.Notes,
		Totals: totalsPayload{
			Subtotal:         totals.Subtotal,
			CouponDiscount:   totals.CouponDiscount,
			ReferralDiscount: totals.ReferralDiscount,
			TierDiscount:     totals.TierDiscount,
			PointsDiscount:   totals.PointsDiscount,
			DeliveryFee:      totals.DeliveryFee,
			Total:            totals.Total,
			Degraded:         totals.Degraded,
		},
	}
	if in.Coordinate != nil {
		lat, lng := in.Coordinate.Lat, in.Coordinate.Lng
		p.Lat, p.Lng = &lat, &lng
	}
	if in.Coupon != nil {
		p.CouponCode = in.Coupon.Code
	}
	for _, line := range in.Lines {
		lp := orderLinePayload{
			ItemID:   line.ItemID,
			UnitType: string(line.UnitType),
			Quantity: line.Quantity,
			Weight:   line.Weight,
		}
		for id, a := range line.Addons {
			lp.Addons = append(lp.Addons, struct {
				AddonID  int64   `json:"addon_id"`
				Quantity float64 `json:"quantity"`
			}{AddonID: id, Quantity: a.Quantity})
		}
		p.Lines = append(p.Lines, lp)
	}
	return p
}

// CustomerProfile loads the loyalty and referral state the pricer needs. An
// unknown or zero id yields a nil profile (guest checkout).
func (r *Repository) CustomerProfile(ctx context.Context, id int64) (*pricing.CustomerProfile, error) {
	if id == 0 {
		return nil, nil
	}
	var (
		p            pricing.CustomerProfile
		refType      *string
		refValue     *float64
		refMaxAmount *float64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT c.id, c.referrer_id IS NOT NULL, c.referral_consumed, c.order_count,
		       c.points_balance, get_points_value(c.points_balance),
		       rb.discount_type, rb.discount_value, rb.max_amount
		FROM customers c
		LEFT JOIN referral_benefits rb ON rb.is_active
		WHERE c.id = $1`,
		id,
	).Scan(&p.ID, &p.HasReferrer, &p.ReferralConsumed, &p.OrderCount,
		&p.PointsBalance, &p.PointsValue, &refType, &refValue, &refMaxAmount)
	if err != nil {
		return nil, err
	}
	if refType != nil && refValue != nil {
		p.Referral = &pricing.ReferralBenefit{
			Type:  pricing.DiscountType(*refType),
			Value: *refValue,
		}
	}
	return &p, nil
}

// Coupon resolves an active coupon by code, nil when absent or inactive.
func (r *Repository) Coupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	if code == "" {
		return nil, nil
	}
	var (
		c    pricing.Coupon
		rule []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT code, discount_type, discount_value, COALESCE(max_discount, 0), rule
		FROM coupons
		WHERE code = $1 AND is_active`,
		code,
	).Scan(&c.Code, &c.Type, &c.Value, &c.MaxDiscount, &rule)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(rule) > 0 {
		if err := json.Unmarshal(rule, &c.Rule); err != nil {
			return nil, fmt.Errorf("decode coupon rule: %w", err)
		}
	}
	return &c, nil
}

// backendMessage pulls the human message out of a store rejection. Business
// rules are raised server-side with RAISE EXCEPTION, which surfaces as a
// PgError with code P0001 and an operator-written (often Arabic) message.
func backendMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "P0001" {
		return pgErr.Message
	}
	return ""
}
