package pricing

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukkan-erp/dukkan-erp/internal/observability"
)

type stubLookup struct {
	price    float64
	discount float64
	err      error
	calls    int
}

func (s *stubLookup) ItemPrice(ctx context.Context, itemID int64, customerID *int64, qty float64) (float64, error) {
	s.calls++
	return s.price, s.err
}

func (s *stubLookup) ItemDiscount(ctx context.Context, itemID int64, customerID *int64, qty float64) (float64, error) {
	return s.discount, s.err
}

func pieceLine(itemID int64, qty, localPrice float64) CartLine {
	return CartLine{ItemID: itemID, UnitType: UnitPiece, Quantity: qty, PricePerUnit: localPrice}
}

func newAggregator(lookup PriceLookup) *Aggregator {
	return NewAggregator(lookup, slog.Default(), nil)
}

func TestSubtotalAndTierDiscount(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 100, discount: 10})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines: []CartLine{pieceLine(1, 2, 90)},
	})
	require.Equal(t, 200.0, totals.Subtotal)
	require.Equal(t, 20.0, totals.TierDiscount)
	require.Equal(t, 180.0, totals.Total)
	require.False(t, totals.Degraded)
}

func TestGramNormalization(t *testing.T) {
	// Lookup returns a per-kilogram price; a gram line with a stored local
	// price gets it scaled down by 1000.
	agg := newAggregator(&stubLookup{price: 5000})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines: []CartLine{{ItemID: 1, UnitType: UnitGram, Weight: 500, PricePerUnit: 5}},
	})
	require.Equal(t, 2500.0, totals.Subtotal)
}

func TestGramWithoutLocalPriceNotNormalized(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 5})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines: []CartLine{{ItemID: 1, UnitType: UnitGram, Weight: 100}},
	})
	require.Equal(t, 500.0, totals.Subtotal)
}

func TestTierDiscountExcludesAddons(t *testing.T) {
	line := pieceLine(1, 1, 100)
	line.Addons = map[int64]CartAddon{
		7: {Addon: Addon{ID: 7, Price: 50}, Quantity: 1},
	}
	agg := newAggregator(&stubLookup{price: 100, discount: 10})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{Lines: []CartLine{line}})
	require.Equal(t, 150.0, totals.Subtotal)
	// 10% of the base unit price only, never of the addon.
	require.Equal(t, 10.0, totals.TierDiscount)
}

func TestCouponCappedAtSubtotal(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 100})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines:  []CartLine{pieceLine(1, 1, 100)},
		Coupon: &Coupon{Code: "BIG", Type: DiscountPercentage, Value: 200},
	})
	require.Equal(t, 100.0, totals.CouponDiscount)
	require.Equal(t, 0.0, totals.Total)
}

func TestCouponMaxDiscountCap(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 100})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines:  []CartLine{pieceLine(1, 2, 100)},
		Coupon: &Coupon{Code: "HALF", Type: DiscountPercentage, Value: 50, MaxDiscount: 30},
	})
	require.Equal(t, 30.0, totals.CouponDiscount)
}

func TestPointsDiscountCappedByRemainder(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 100})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines:  []CartLine{pieceLine(1, 1, 100)},
		Coupon: &Coupon{Code: "C30", Type: DiscountFixed, Value: 30},
		Customer: &CustomerProfile{
			ID:            9,
			PointsBalance: 5000,
			PointsValue:   1000,
		},
		Loyalty: LoyaltySettings{ProgramEnabled: true, RedeemRequested: true},
	})
	require.Equal(t, 30.0, totals.CouponDiscount)
	// min(1000, 100-30-0-0) = 70, not 1000.
	require.Equal(t, 70.0, totals.PointsDiscount)
	require.Equal(t, 0.0, totals.Total)
}

func TestPointsDiscountRequiresToggleAndBalance(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 100})
	in := QuoteInput{
		Lines:    []CartLine{pieceLine(1, 1, 100)},
		Customer: &CustomerProfile{ID: 9, PointsBalance: 0, PointsValue: 50},
		Loyalty:  LoyaltySettings{ProgramEnabled: true, RedeemRequested: true},
	}
	require.Equal(t, 0.0, agg.ComputeTotals(context.Background(), in).PointsDiscount)

	in.Customer.PointsBalance = 10
	in.Loyalty.RedeemRequested = false
	require.Equal(t, 0.0, agg.ComputeTotals(context.Background(), in).PointsDiscount)

	in.Loyalty = LoyaltySettings{ProgramEnabled: false, RedeemRequested: true}
	require.Equal(t, 0.0, agg.ComputeTotals(context.Background(), in).PointsDiscount)
}

func TestTotalNeverBelowDeliveryFee(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 10})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines:       []CartLine{pieceLine(1, 1, 10)},
		Coupon:      &Coupon{Code: "X", Type: DiscountFixed, Value: 1e9},
		DeliveryFee: 20,
		Customer: &CustomerProfile{
			ID: 1, HasReferrer: true, OrderCount: 0,
			Referral: &ReferralBenefit{Type: DiscountFixed, Value: 1e9},
		},
	})
	require.GreaterOrEqual(t, totals.Total, totals.DeliveryFee)
	require.Equal(t, 20.0, totals.Total)
}

func TestReferralFirstOrderScenario(t *testing.T) {
	// Cart subtotal 500, referral 10% on first order, no coupon, points off,
	// zone fee 20: total = (500-50)+20 = 470.
	agg := newAggregator(&stubLookup{price: 100})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines: []CartLine{pieceLine(1, 5, 100)},
		Customer: &CustomerProfile{
			ID: 3, HasReferrer: true, OrderCount: 0,
			Referral: &ReferralBenefit{Type: DiscountPercentage, Value: 10},
		},
		DeliveryFee: 20,
	})
	require.Equal(t, 500.0, totals.Subtotal)
	require.Equal(t, 50.0, totals.ReferralDiscount)
	require.Equal(t, 0.0, totals.PointsDiscount)
	require.Equal(t, 470.0, totals.Total)
}

func TestReferralNotFirstOrder(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 100})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines: []CartLine{pieceLine(1, 5, 100)},
		Customer: &CustomerProfile{
			ID: 3, HasReferrer: true, OrderCount: 2,
			Referral: &ReferralBenefit{Type: DiscountPercentage, Value: 10},
		},
	})
	require.Equal(t, 0.0, totals.ReferralDiscount)
}

func TestCouponComputedAgainstRawSubtotal(t *testing.T) {
	// Referral reduces what points can consume, but the coupon percentage is
	// still taken from the raw subtotal. Observed stacking, preserved.
	agg := newAggregator(&stubLookup{price: 100})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines:  []CartLine{pieceLine(1, 2, 100)},
		Coupon: &Coupon{Code: "TEN", Type: DiscountPercentage, Value: 10},
		Customer: &CustomerProfile{
			ID: 3, HasReferrer: true, OrderCount: 0,
			Referral: &ReferralBenefit{Type: DiscountFixed, Value: 50},
		},
	})
	require.Equal(t, 50.0, totals.ReferralDiscount)
	// 10% of 200, not of 150.
	require.Equal(t, 20.0, totals.CouponDiscount)
	require.Equal(t, 130.0, totals.Total)
}

func TestLookupFailureFallsBackToCartPrices(t *testing.T) {
	agg := newAggregator(&stubLookup{err: errors.New("connection refused")})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines:       []CartLine{pieceLine(1, 3, 40)},
		Coupon:      &Coupon{Code: "TEN", Type: DiscountPercentage, Value: 10},
		DeliveryFee: 15,
	})
	require.True(t, totals.Degraded)
	require.Equal(t, 120.0, totals.Subtotal)
	require.Equal(t, 0.0, totals.CouponDiscount)
	require.Equal(t, 0.0, totals.TierDiscount)
	require.Equal(t, 135.0, totals.Total)
}

func TestLookupFailureBumpsDegradedCounter(t *testing.T) {
	metrics := observability.NewMetrics()
	agg := NewAggregator(&stubLookup{err: errors.New("connection refused")}, slog.Default(), metrics)

	totals := agg.ComputeTotals(context.Background(), QuoteInput{
		Lines: []CartLine{pieceLine(1, 1, 90)},
	})
	require.True(t, totals.Degraded)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "dukkan_degraded_quotes_total 1")
}

func TestEmptyCartHasNoDeliveryFee(t *testing.T) {
	agg := newAggregator(&stubLookup{price: 100})
	totals := agg.ComputeTotals(context.Background(), QuoteInput{DeliveryFee: 20})
	require.Equal(t, 0.0, totals.Subtotal)
	require.Equal(t, 0.0, totals.DeliveryFee)
	require.Equal(t, 0.0, totals.Total)
}
