package settlement

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/dukkan-erp/dukkan-erp/internal/ledger"
)

// Workspace accumulates allocation drafts for one party before they are
// posted in a single document. Every add runs the full guard set; a draft
// that made it into the workspace is always postable on its own.
type Workspace struct {
	partyID int64

	mu     sync.Mutex
	drafts []AllocationDraft
}

// NewWorkspace opens an empty workspace for a party.
func NewWorkspace(partyID int64) *Workspace {
	return &Workspace{partyID: partyID}
}

// PartyID returns the workspace's party.
func (w *Workspace) PartyID() int64 { return w.partyID }

// Drafts returns a copy of the accumulated drafts.
func (w *Workspace) Drafts() []AllocationDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]AllocationDraft, len(w.drafts))
	copy(out, w.drafts)
	return out
}

// AddAllocation validates and stores one debit/credit match.
//
// Guards, in order: both items must be present and on opposite sides of the
// same party; the currencies must match; the amount must be positive and
// must not exceed the smaller open balance in the chosen dimension.
func (w *Workspace) AddAllocation(debit, credit *ledger.OpenItem, amount decimal.Decimal, kind AmountKind) error {
	if debit == nil || credit == nil ||
		debit.Direction != ledger.DirectionDebit || credit.Direction != ledger.DirectionCredit {
		return &GuardError{Msg: i18n.MsgSelectDebitCredit}
	}
	if debit.PartyID != w.partyID || credit.PartyID != w.partyID {
		return &GuardError{Msg: i18n.MsgSelectDebitCredit}
	}
	if debit.Currency != credit.Currency {
		return &GuardError{Msg: i18n.MsgCurrencyMismatch}
	}

	var limit decimal.Decimal
	switch kind {
	case KindForeign:
		if !debit.HasForeign() || !credit.HasForeign() {
			return &GuardError{Msg: i18n.MsgCurrencyMismatch}
		}
		limit = decimal.Min(*debit.OpenForeign, *credit.OpenForeign)
	default:
		limit = decimal.Min(debit.OpenBase, credit.OpenBase)
	}

	if !amount.IsPositive() {
		return &GuardError{Msg: i18n.MsgAmountNotPositive}
	}
	if amount.GreaterThan(limit) {
		return &GuardError{Msg: i18n.MsgAmountExceedsOpen}
	}

	currency := ""
	if kind == KindForeign {
		currency = debit.Currency
	}
	w.mu.Lock()
	w.drafts = append(w.drafts, AllocationDraft{
		DebitID:  debit.ID,
		CreditID: credit.ID,
		Kind:     kind,
		Currency: currency,
		Amount:   amount,
	})
	w.mu.Unlock()
	return nil
}

// Remove drops the draft at the given index. Out of range is a no-op.
func (w *Workspace) Remove(i int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.drafts) {
		return
	}
	w.drafts = append(w.drafts[:i], w.drafts[i+1:]...)
}

// Clear drops all drafts.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drafts = nil
}

// Empty reports whether no drafts are staged.
func (w *Workspace) Empty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.drafts) == 0
}
