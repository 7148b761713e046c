// Package settlement matches open debits against open credits and posts the
// result atomically.
package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
)

// AmountKind says which dimension an allocation amount is expressed in.
type AmountKind string

const (
	KindForeign AmountKind = "foreign"
	KindBase    AmountKind = "base"
)

// AllocationDraft is one proposed debit/credit match. The amount lives in
// exactly one dimension, named by Kind.
type AllocationDraft struct {
	DebitID  int64           `json:"debit_id"`
	CreditID int64           `json:"credit_id"`
	Kind     AmountKind      `json:"kind"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Settlement is a posted settlement document.
type Settlement struct {
	ID        int64     `json:"id"`
	PartyID   int64     `json:"party_id"`
	DocNo     string    `json:"doc_no"`
	Voided    bool      `json:"voided"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GuardError is a rejected workspace operation with a localized message.
type GuardError struct {
	Msg i18n.Message
}

func (e *GuardError) Error() string { return e.Msg.En }

// Localize renders the guard message.
func (e *GuardError) Localize(lang i18n.Lang) string { return e.Msg.In(lang) }
