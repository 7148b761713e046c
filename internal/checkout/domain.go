package checkout

import (
	"time"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
)

// PaymentMethod enumerates the supported payment methods.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentKuraimi PaymentMethod = "kuraimi"
	PaymentNetwork PaymentMethod = "network"
)

// RequiresProof reports whether the method needs a transfer reference or a
// receipt screenshot plus a resolved target.
func (m PaymentMethod) RequiresProof() bool {
	return m == PaymentKuraimi || m == PaymentNetwork
}

// PaymentTarget is a bank account or recipient a transfer can be sent to.
type PaymentTarget struct {
	ID     int64         `json:"id"`
	Method PaymentMethod `json:"method"`
	Name   string        `json:"name"`
}

// PaymentDetails carries the chosen method and its proof fields.
type PaymentDetails struct {
	Method        PaymentMethod `json:"method"`
	ReferenceNo   string        `json:"reference_no,omitempty"`
	ScreenshotURL string        `json:"screenshot_url,omitempty"`
	TargetID      int64         `json:"target_id,omitempty"`
}

// HasProof reports whether any proof field is populated.
func (p PaymentDetails) HasProof() bool {
	return p.ReferenceNo != "" || p.ScreenshotURL != ""
}

// PaymentConfig is the runtime payment setup: which methods are enabled and
// which targets exist per method.
type PaymentConfig struct {
	EnabledMethods []PaymentMethod
	Targets        []PaymentTarget
}

// MethodEnabled reports whether the method is switched on by configuration.
func (c PaymentConfig) MethodEnabled(m PaymentMethod) bool {
	for _, e := range c.EnabledMethods {
		if e == m {
			return true
		}
	}
	return false
}

// TargetsFor lists the targets configured for a method.
func (c PaymentConfig) TargetsFor(m PaymentMethod) []PaymentTarget {
	var out []PaymentTarget
	for _, t := range c.Targets {
		if t.Method == m {
			out = append(out, t)
		}
	}
	return out
}

// HasTarget reports whether the given target id belongs to the method.
func (c PaymentConfig) HasTarget(m PaymentMethod, id int64) bool {
	for _, t := range c.TargetsFor(m) {
		if t.ID == id {
			return true
		}
	}
	return false
}

// CustomerInfo is the minimal identity captured at checkout.
type CustomerInfo struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderInput is the composed order a checkout submission carries.
type OrderInput struct {
	Customer     CustomerInfo
	AddressText  string
	Coordinate   *geo.Point
	ZoneID       int64
	Payment      PaymentDetails
	ScheduledAt  *time.Time
	Lines        []pricing.CartLine
	Coupon       *pricing.Coupon
	RedeemPoints bool
	Notes        string
}

// OrderReceipt is the result of a successful submission.
type OrderReceipt struct {
	OrderID int64                  `json:"order_id"`
	Totals  pricing.CheckoutTotals `json:"totals"`
}
