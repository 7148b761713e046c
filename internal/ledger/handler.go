package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dukkan-erp/dukkan-erp/internal/platform/httpx"
)

// Handler serves the open item view.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// OpenItems returns the party's open items split by direction. The optional
// status and currency queries narrow the view.
func (h *Handler) OpenItems(w http.ResponseWriter, r *http.Request) {
	partyID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid party id")
		return
	}

	status := Status(r.URL.Query().Get("status"))
	switch status {
	case "", StatusOpen, StatusPartial, StatusSettled:
	default:
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid status filter")
		return
	}
	currency := r.URL.Query().Get("currency")

	view, err := h.service.Load(r.Context(), partyID, currency, status)
	if err != nil {
		h.logger.Error("load open items", slog.Any("error", err), slog.Int64("party_id", partyID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Suggest returns the proposed allocation amount for a debit/credit pair.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Debit  OpenItem `json:"debit"`
		Credit OpenItem `json:"credit"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid body")
		return
	}
	s := SuggestAmount(req.Debit, req.Credit)
	if s.Kind == SuggestionNone {
		s.Amount = decimal.Zero
	}
	httpx.JSON(w, http.StatusOK, s)
}
