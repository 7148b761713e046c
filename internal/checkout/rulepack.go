package checkout

import (
	"context"

	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
)

// RulePackSource overlays file-based eligibility rules onto coupons that
// carry no rule of their own. Database rules always win.
type RulePackSource struct {
	ProfileSource
	Pack pricing.RulePack
}

// Coupon resolves the coupon and attaches the pack rule when the stored
// coupon has none.
func (s RulePackSource) Coupon(ctx context.Context, code string) (*pricing.Coupon, error) {
	coupon, err := s.ProfileSource.Coupon(ctx, code)
	if err != nil || coupon == nil {
		return coupon, err
	}
	if len(coupon.Rule) == 0 {
		if rule := s.Pack.RuleFor(code); rule != nil {
			coupon.Rule = rule
		}
	}
	return coupon, nil
}
