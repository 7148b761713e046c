// Package ledger builds the per-party open item view used by the settlement
// workspace: unsettled invoices and receipts split by direction, oldest due
// first.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells which side of the party account an item sits on.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// Status is the settlement state of an item.
type Status string

const (
	StatusOpen    Status = "open"
	StatusPartial Status = "partial"
	StatusSettled Status = "settled"
)

// OpenItem is one unsettled (or partially settled) ledger entry. Amounts are
// decimals; float arithmetic on money drifts. Foreign amounts are present only
// for documents booked in a currency other than the base one.
type OpenItem struct {
	ID          int64            `json:"id"`
	PartyID     int64            `json:"party_id"`
	Direction   Direction        `json:"direction"`
	DocType     string           `json:"doc_type"`
	DocNo       string           `json:"doc_no"`
	Status      Status           `json:"status"`
	Currency    string           `json:"currency"`
	BaseAmount  decimal.Decimal  `json:"base_amount"`
	OpenBase    decimal.Decimal  `json:"open_base"`
	ForeignAmt  *decimal.Decimal `json:"foreign_amount,omitempty"`
	OpenForeign *decimal.Decimal `json:"open_foreign,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
	DueAt       *time.Time       `json:"due_at,omitempty"`
}

// EffectiveDate is the ordering date: the due date when the document carries
// one, the posting date otherwise.
func (it OpenItem) EffectiveDate() time.Time {
	if it.DueAt != nil {
		return *it.DueAt
	}
	return it.OccurredAt
}

// HasForeign reports whether the item still tracks a foreign open amount.
func (it OpenItem) HasForeign() bool {
	return it.OpenForeign != nil && !it.OpenForeign.IsZero()
}

// PartyView is the grouped open item view for one party.
type PartyView struct {
	PartyID int64      `json:"party_id"`
	Debits  []OpenItem `json:"debits"`
	Credits []OpenItem `json:"credits"`
}

// SuggestionKind says which amount dimension a suggestion was computed in.
type SuggestionKind string

const (
	SuggestionNone    SuggestionKind = "none"
	SuggestionForeign SuggestionKind = "foreign"
	SuggestionBase    SuggestionKind = "base"
)

// Suggestion is the proposed allocation amount for a debit/credit pair.
type Suggestion struct {
	Kind   SuggestionKind  `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// SuggestAmount proposes the allocation for a pair: when both items still
// carry foreign balances the smaller foreign balance is suggested, otherwise
// the smaller base balance. Items on the same side or in different currencies
// get no suggestion.
func SuggestAmount(debit, credit OpenItem) Suggestion {
	if debit.Direction == credit.Direction {
		return Suggestion{Kind: SuggestionNone}
	}
	if debit.Currency != credit.Currency {
		return Suggestion{Kind: SuggestionNone}
	}
	if debit.HasForeign() && credit.HasForeign() {
		return Suggestion{
			Kind:   SuggestionForeign,
			Amount: decimal.Min(*debit.OpenForeign, *credit.OpenForeign),
		}
	}
	return Suggestion{
		Kind:   SuggestionBase,
		Amount: decimal.Min(debit.OpenBase, credit.OpenBase),
	}
}
