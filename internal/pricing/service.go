package pricing

import (
	"context"
	"log/slog"
	"math"

	"github.com/dukkan-erp/dukkan-erp/internal/observability"
)

// PriceLookup resolves per-item pricing keyed by item, customer and quantity.
// The implementation is remote; any failure makes the whole quote degrade to
// the cart's locally stored prices.
type PriceLookup interface {
	ItemPrice(ctx context.Context, itemID int64, customerID *int64, quantity float64) (float64, error)
	ItemDiscount(ctx context.Context, itemID int64, customerID *int64, quantity float64) (float64, error)
}

// Aggregator turns cart state into CheckoutTotals.
type Aggregator struct {
	lookup  PriceLookup
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAggregator builds an Aggregator. Metrics may be nil.
func NewAggregator(lookup PriceLookup, logger *slog.Logger, metrics *observability.Metrics) *Aggregator {
	return &Aggregator{lookup: lookup, logger: logger, metrics: metrics}
}

// ComputeTotals resolves per-line prices and applies the discount sequence:
// referral, then coupon (against the raw subtotal), then points (capped by
// what remains after the other three). The order is load-bearing; see the
// capping rules on each step.
func (a *Aggregator) ComputeTotals(ctx context.Context, in QuoteInput) CheckoutTotals {
	subtotal, tierDiscount, err := a.resolveLines(ctx, in)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("pricing lookup failed, falling back to cart prices", slog.Any("error", err))
		}
		if a.metrics != nil {
			a.metrics.DegradedQuotes.Inc()
		}
		return a.fallbackTotals(in)
	}

	referral := referralDiscount(in.Customer, subtotal)
	coupon := couponDiscount(in.Coupon, in.Lines, in.Customer, subtotal)
	points := pointsDiscount(in.Customer, in.Loyalty, subtotal-coupon-tierDiscount-referral)

	fee := in.DeliveryFee
	if subtotal == 0 {
		fee = 0
	}

	return CheckoutTotals{
		Subtotal:         subtotal,
		CouponDiscount:   coupon,
		ReferralDiscount: referral,
		TierDiscount:     tierDiscount,
		PointsDiscount:   points,
		DeliveryFee:      fee,
		Total:            math.Max(0, subtotal-coupon-tierDiscount-points-referral) + fee,
	}
}

func (a *Aggregator) resolveLines(ctx context.Context, in QuoteInput) (subtotal, tierDiscount float64, err error) {
	var customerID *int64
	if in.Customer != nil {
		customerID = &in.Customer.ID
	}

	for _, line := range in.Lines {
		qty := line.EffectiveQuantity()
		if qty <= 0 {
			continue
		}

		unit, lookupErr := a.lookup.ItemPrice(ctx, line.ItemID, customerID, qty)
		if lookupErr != nil {
			return 0, 0, lookupErr
		}
		pct, lookupErr := a.lookup.ItemDiscount(ctx, line.ItemID, customerID, qty)
		if lookupErr != nil {
			return 0, 0, lookupErr
		}

		// The lookup returns a per-kilogram price; gram-priced lines store
		// their own per-unit price and need the kilogram price scaled down.
		if line.UnitType == UnitGram && line.PricePerUnit > 0 {
			unit = unit / 1000
		}

		subtotal += (unit + line.AddonsUnitPrice()) * qty
		// Tier discount never applies to addons.
		tierDiscount += unit * (pct / 100) * qty
	}
	return subtotal, tierDiscount, nil
}

// fallbackTotals is the degraded-but-safe quote: locally stored prices,
// zero discounts.
func (a *Aggregator) fallbackTotals(in QuoteInput) CheckoutTotals {
	var subtotal float64
	for _, line := range in.Lines {
		qty := line.EffectiveQuantity()
		if qty <= 0 {
			continue
		}
		subtotal += (line.PricePerUnit + line.AddonsUnitPrice()) * qty
	}
	fee := in.DeliveryFee
	if subtotal == 0 {
		fee = 0
	}
	return CheckoutTotals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
		Degraded:    true,
	}
}

func referralDiscount(c *CustomerProfile, subtotal float64) float64 {
	if c == nil || c.Referral == nil {
		return 0
	}
	if !c.HasReferrer || c.ReferralConsumed || !c.FirstOrder() {
		return 0
	}
	switch c.Referral.Type {
	case DiscountPercentage:
		return subtotal * c.Referral.Value / 100
	case DiscountFixed:
		return math.Min(c.Referral.Value, subtotal)
	}
	return 0
}

// couponDiscount is computed against the raw subtotal, not the
// referral-reduced one. Observed stacking behavior, preserved as is.
func couponDiscount(coupon *Coupon, lines []CartLine, c *CustomerProfile, subtotal float64) float64 {
	if coupon == nil || subtotal <= 0 {
		return 0
	}
	if !Eligible(coupon, couponContext(lines, c, subtotal)) {
		return 0
	}

	var discount float64
	switch coupon.Type {
	case DiscountPercentage:
		discount = subtotal * coupon.Value / 100
	case DiscountFixed:
		discount = coupon.Value
	default:
		return 0
	}
	if coupon.MaxDiscount > 0 {
		discount = math.Min(discount, coupon.MaxDiscount)
	}
	return math.Min(discount, subtotal)
}

// pointsDiscount is capped by whatever remains after the other three
// discounts, even though it is computed last.
func pointsDiscount(c *CustomerProfile, loyalty LoyaltySettings, remaining float64) float64 {
	if !loyalty.RedeemRequested || !loyalty.ProgramEnabled {
		return 0
	}
	if c == nil || c.PointsBalance <= 0 {
		return 0
	}
	return math.Max(0, math.Min(c.PointsValue, remaining))
}
