package pricing

// UnitType classifies how a cart line's quantity is measured.
type UnitType string

const (
	UnitKg    UnitType = "kg"
	UnitGram  UnitType = "gram"
	UnitPiece UnitType = "piece"
)

// Addon is an optional extra attached to a cart line.
type Addon struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CartAddon pairs an addon with its chosen quantity.
type CartAddon struct {
	Addon    Addon   `json:"addon"`
	Quantity float64 `json:"quantity"`
}

// CartLine is one item in the session cart. PricePerUnit is the locally
// stored price used for gram normalization and as the degraded fallback when
// the pricing lookup is unavailable.
type CartLine struct {
	ItemID       int64               `json:"item_id"`
	UnitType     UnitType            `json:"unit_type"`
	Quantity     float64             `json:"quantity"`
	Weight       float64             `json:"weight,omitempty"`
	PricePerUnit float64             `json:"price_per_unit,omitempty"`
	Addons       map[int64]CartAddon `json:"selected_addons,omitempty"`
}

// EffectiveQuantity is the weight for weighed unit types, else the count.
func (l CartLine) EffectiveQuantity() float64 {
	if l.UnitType == UnitKg || l.UnitType == UnitGram {
		return l.Weight
	}
	return l.Quantity
}

// AddonsUnitPrice sums the per-unit price of all selected addons.
func (l CartLine) AddonsUnitPrice() float64 {
	var total float64
	for _, a := range l.Addons {
		total += a.Addon.Price * a.Quantity
	}
	return total
}

// DiscountType distinguishes percentage from fixed-value discounts.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is an applied coupon. Rule is an optional JSONLogic eligibility
// expression; nil means always eligible.
type Coupon struct {
	Code        string         `json:"code"`
	Type        DiscountType   `json:"type"`
	Value       float64        `json:"value"`
	MaxDiscount float64        `json:"max_discount,omitempty"`
	Rule        map[string]any `json:"rule,omitempty"`
}

// ReferralBenefit is the first-order benefit granted to referred customers.
type ReferralBenefit struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

// CustomerProfile carries the customer facts the aggregator needs.
type CustomerProfile struct {
	ID               int64
	HasReferrer      bool
	ReferralConsumed bool
	OrderCount       int
	PointsBalance    float64
	PointsValue      float64
	Referral         *ReferralBenefit
}

// FirstOrder reports whether the referral first-order benefit applies.
func (c CustomerProfile) FirstOrder() bool {
	return c.OrderCount == 0
}

// LoyaltySettings controls points redemption for a quote.
type LoyaltySettings struct {
	ProgramEnabled  bool
	RedeemRequested bool
}

// CheckoutTotals is the derived pricing result for a cart.
type CheckoutTotals struct {
	Subtotal         float64 `json:"subtotal"`
	CouponDiscount   float64 `json:"coupon_discount"`
	ReferralDiscount float64 `json:"referral_discount"`
	TierDiscount     float64 `json:"tier_discount"`
	PointsDiscount   float64 `json:"points_discount"`
	DeliveryFee      float64 `json:"delivery_fee"`
	Total            float64 `json:"total"`
	Degraded         bool    `json:"degraded,omitempty"`
}

// QuoteInput collects everything a totals computation depends on.
type QuoteInput struct {
	Lines       []CartLine
	Customer    *CustomerProfile
	Coupon      *Coupon
	Loyalty     LoyaltySettings
	DeliveryFee float64
}
