package settlement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/dukkan-erp/dukkan-erp/internal/ledger"
	"github.com/dukkan-erp/dukkan-erp/internal/platform/httpx"
)

// Handler serves the settlement endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	items   *ledger.Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, items *ledger.Service) *Handler {
	return &Handler{logger: logger, service: service, items: items}
}

type allocationDTO struct {
	DebitID  int64  `json:"debit_id"`
	CreditID int64  `json:"credit_id"`
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
}

type createRequest struct {
	PartyID     int64           `json:"party_id"`
	Notes       string          `json:"notes"`
	Allocations []allocationDTO `json:"allocations"`
}

// Create rebuilds the workspace against the party's current open items, runs
// every guard and posts the document.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	lang := httpx.Lang(r)

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid body")
		return
	}

	view, err := h.items.Load(r.Context(), req.PartyID, "", "")
	if err != nil {
		h.logger.Error("load open items for settlement", slog.Any("error", err))
		h.respondErr(w, err, lang)
		return
	}
	byID := make(map[int64]*ledger.OpenItem)
	for i := range view.Debits {
		byID[view.Debits[i].ID] = &view.Debits[i]
	}
	for i := range view.Credits {
		byID[view.Credits[i].ID] = &view.Credits[i]
	}

	ws := NewWorkspace(req.PartyID)
	for _, a := range req.Allocations {
		amount, err := decimal.NewFromString(a.Amount)
		if err != nil {
			httpx.ProblemLocalized(w, http.StatusUnprocessableEntity,
				"Invalid Allocation", i18n.MsgAmountNotPositive, lang)
			return
		}
		err = ws.AddAllocation(byID[a.DebitID], byID[a.CreditID], amount, AmountKind(a.Kind))
		if err != nil {
			h.respondErr(w, err, lang)
			return
		}
	}

	id, err := h.service.Create(r.Context(), ws, req.Notes)
	if err != nil {
		h.respondErr(w, err, lang)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"settlement_id": id})
}

// Void reverses a posted settlement.
func (h *Handler) Void(w http.ResponseWriter, r *http.Request) {
	lang := httpx.Lang(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid settlement id")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid body")
		return
	}

	if err := h.service.Reverse(r.Context(), id, req.Reason); err != nil {
		h.respondErr(w, err, lang)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"voided": true})
}

// List returns the party's recent settlements.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	partyID, err := strconv.ParseInt(r.URL.Query().Get("party_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "party_id is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	out, err := h.service.Recent(r.Context(), partyID, limit)
	if err != nil {
		h.respondErr(w, err, httpx.Lang(r))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settlements": out})
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, lang i18n.Lang) {
	var gErr *GuardError
	if errors.As(err, &gErr) {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Rejected", gErr.Localize(lang))
		return
	}
	if errors.Is(err, ErrTimedOut) {
		httpx.ProblemLocalized(w, http.StatusGatewayTimeout, "Timeout", i18n.MsgRequestTimeout, lang)
		return
	}
	// A raised store rejection, e.g. an open item consumed by a concurrent
	// settlement. The message passes the Arabic-preferring filter verbatim.
	if msg := backendMessage(err); msg != "" {
		httpx.Problem(w, http.StatusConflict, "Rejected", i18n.BackendError(msg, lang))
		return
	}
	httpx.RespondError(w, err)
}

// backendMessage extracts the message of a business error raised by a store
// function (code P0001); other errors yield an empty string.
func backendMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "P0001" {
		return pgErr.Message
	}
	return ""
}
