package checkout

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
)

var validate = validator.New()

type coordinateDTO struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type addonDTO struct {
	AddonID  int64   `json:"addon_id" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type cartLineDTO struct {
	ItemID       int64      `json:"item_id" validate:"required"`
	UnitType     string     `json:"unit_type" validate:"required,oneof=kg gram piece"`
	Quantity     float64    `json:"quantity" validate:"gte=0"`
	Weight       float64    `json:"weight" validate:"gte=0"`
	PricePerUnit float64    `json:"price_per_unit" validate:"gte=0"`
	Addons       []addonDTO `json:"addons" validate:"dive"`
}

type paymentDTO struct {
	Method        string `json:"method" validate:"required,oneof=cash kuraimi network"`
	ReferenceNo   string `json:"reference_no"`
	ScreenshotURL string `json:"screenshot_url" validate:"omitempty,url"`
	TargetID      int64  `json:"target_id"`
}

type orderRequest struct {
	CustomerID   int64          `json:"customer_id"`
	Name         string         `json:"name" validate:"required"`
	Phone        string         `json:"phone" validate:"required"`
	AddressText  string         `json:"address_text" validate:"required"`
	Coordinate   *coordinateDTO `json:"coordinate"`
	ZoneID       int64          `json:"zone_id"`
	Payment      paymentDTO     `json:"payment" validate:"required"`
	ScheduledAt  *time.Time     `json:"scheduled_at"`
	CouponCode   string         `json:"coupon_code"`
	RedeemPoints bool           `json:"redeem_points"`
	Notes        string         `json:"notes" validate:"max=500"`
	Lines        []cartLineDTO  `json:"lines" validate:"dive"`
}

type quoteRequest struct {
	CustomerID   int64         `json:"customer_id"`
	ZoneID       int64         `json:"zone_id"`
	CouponCode   string        `json:"coupon_code"`
	RedeemPoints bool          `json:"redeem_points"`
	Lines        []cartLineDTO `json:"lines" validate:"dive"`
}

func (r orderRequest) toInput() OrderInput {
	in := OrderInput{
		Customer:     CustomerInfo{ID: r.CustomerID, Name: r.Name, Phone: r.Phone},
		AddressText:  r.AddressText,
		ZoneID:       r.ZoneID,
		ScheduledAt:  r.ScheduledAt,
		RedeemPoints: r.RedeemPoints,
		Notes:        r.Notes,
		Lines:        toLines(r.Lines),
		Payment: PaymentDetails{
			Method:        PaymentMethod(r.Payment.Method),
			ReferenceNo:   r.Payment.ReferenceNo,
			ScreenshotURL: r.Payment.ScreenshotURL,
			TargetID:      r.Payment.TargetID,
		},
	}
	if r.Coordinate != nil {
		in.Coordinate = &geo.Point{Lat: r.Coordinate.Lat, Lng: r.Coordinate.Lng}
	}
	return in
}

func toLines(dtos []cartLineDTO) []pricing.CartLine {
	var lines []pricing.CartLine
	for _, d := range dtos {
		line := pricing.CartLine{
			ItemID:       d.ItemID,
			UnitType:     pricing.UnitType(d.UnitType),
			Quantity:     d.Quantity,
			Weight:       d.Weight,
			PricePerUnit: d.PricePerUnit,
		}
		if len(d.Addons) > 0 {
			line.Addons = make(map[int64]pricing.CartAddon, len(d.Addons))
			for _, a := range d.Addons {
				line.Addons[a.AddonID] = pricing.CartAddon{
					Addon:    pricing.Addon{ID: a.AddonID, Price: a.Price},
					Quantity: a.Quantity,
				}
			}
		}
		lines = append(lines, line)
	}
	return lines
}
