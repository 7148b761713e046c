package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/dukkan-erp/dukkan-erp/internal/platform/httpx"
	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
	"github.com/dukkan-erp/dukkan-erp/internal/zones"
)

// ProfileSource resolves customer and coupon state for pricing.
type ProfileSource interface {
	CustomerProfile(ctx context.Context, id int64) (*pricing.CustomerProfile, error)
	Coupon(ctx context.Context, code string) (*pricing.Coupon, error)
}

// Handler serves the checkout endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	profiles ProfileSource
	loyalty  pricing.LoyaltySettings
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, profiles ProfileSource, loyalty pricing.LoyaltySettings) *Handler {
	return &Handler{logger: logger, service: service, profiles: profiles, loyalty: loyalty}
}

// Quote prices the cart without persisting anything.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	in := OrderInput{
		ZoneID:       req.ZoneID,
		RedeemPoints: req.RedeemPoints,
		Lines:        toLines(req.Lines),
	}
	customer, coupon, err := h.resolve(r.Context(), req.CustomerID, req.CouponCode)
	if err != nil {
		h.logger.Error("resolve quote context", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	in.Coupon = coupon

	loyalty := h.loyalty
	loyalty.RedeemRequested = req.RedeemPoints
	totals, err := h.service.Quote(r.Context(), in, customer, loyalty)
	if err != nil {
		h.logger.Error("quote", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

// CreateOrder validates and submits the order. Retries may reuse the
// Idempotency-Key header to avoid duplicates after a timeout.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	lang := httpx.Lang(r)

	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	key := uuid.New()
	if raw := r.Header.Get("Idempotency-Key"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid idempotency key")
			return
		}
		key = parsed
	}

	in := req.toInput()
	customer, coupon, err := h.resolve(r.Context(), req.CustomerID, req.CouponCode)
	if err != nil {
		h.logger.Error("resolve order context", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	in.Coupon = coupon

	loyalty := h.loyalty
	loyalty.RedeemRequested = req.RedeemPoints
	receipt, err := h.service.Submit(r.Context(), key, in, customer, loyalty, lang)
	if err != nil {
		h.respondSubmitError(w, err, lang)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

// ZoneCheck reports whether a coordinate falls inside a zone, with the
// localized blocking message when it does not.
func (h *Handler) ZoneCheck(w http.ResponseWriter, r *http.Request) {
	lang := httpx.Lang(r)

	var req struct {
		ZoneID int64   `json:"zone_id" validate:"required"`
		Lat    float64 `json:"lat"`
		Lng    float64 `json:"lng"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid body")
		return
	}
	zone, err := h.service.zones.Get(r.Context(), req.ZoneID)
	if errors.Is(err, zones.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "zone not found")
		return
	}
	if err != nil {
		h.logger.Error("zone check", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	match := zones.VerifyMatch(geo.Point{Lat: req.Lat, Lng: req.Lng}, *zone)
	resp := map[string]any{"match": match}
	if match.Checked && !match.IsInside {
		resp["message"] = i18n.MsgZoneMismatch.Format(geo.FormatDistance(match.Distance, lang)).In(lang)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// PaymentOptions lists enabled methods and their transfer targets.
func (h *Handler) PaymentOptions(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.PaymentOptions(r.Context())
	if err != nil {
		h.logger.Error("payment options", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"methods": cfg.EnabledMethods,
		"targets": cfg.Targets,
	})
}

func (h *Handler) resolve(ctx context.Context, customerID int64, couponCode string) (*pricing.CustomerProfile, *pricing.Coupon, error) {
	customer, err := h.profiles.CustomerProfile(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	coupon, err := h.profiles.Coupon(ctx, couponCode)
	if err != nil {
		return nil, nil, err
	}
	return customer, coupon, nil
}

func (h *Handler) respondSubmitError(w http.ResponseWriter, err error, lang i18n.Lang) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		fields := make([]map[string]string, 0, len(vErr.Fields))
		for _, fe := range vErr.Fields {
			fields = append(fields, map[string]string{
				"field":   fe.Field,
				"message": fe.Localize(lang),
			})
		}
		httpx.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"title":  "Validation Failed",
			"errors": fields,
		})
		return
	}
	var sErr *SubmitError
	if errors.As(err, &sErr) {
		httpx.Problem(w, http.StatusConflict, "Order Rejected", sErr.Message)
		return
	}
	h.logger.Error("create order", slog.Any("error", err))
	httpx.RespondError(w, err)
}
