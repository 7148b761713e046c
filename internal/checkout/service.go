package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/dukkan-erp/dukkan-erp/internal/notify"
	"github.com/dukkan-erp/dukkan-erp/internal/observability"
	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
	"github.com/dukkan-erp/dukkan-erp/internal/zones"
)

// ErrSubmissionInFlight is returned when a submit starts while another one is
// still running for the same session.
var ErrSubmissionInFlight = errors.New("checkout: submission already in flight")

// ZoneDirectory is the zones surface the orchestrator depends on.
type ZoneDirectory interface {
	List(ctx context.Context) ([]zones.DeliveryZone, error)
	Get(ctx context.Context, id int64) (*zones.DeliveryZone, error)
}

// Pricer computes totals for a quote.
type Pricer interface {
	ComputeTotals(ctx context.Context, in pricing.QuoteInput) pricing.CheckoutTotals
}

// OrderRepository persists orders atomically.
type OrderRepository interface {
	CreateOrder(ctx context.Context, key uuid.UUID, in OrderInput, totals pricing.CheckoutTotals) (int64, error)
	PaymentTargets(ctx context.Context) ([]PaymentTarget, error)
}

// SubmitError is a user-facing submission failure with a localized message.
type SubmitError struct {
	Message string
}

func (e *SubmitError) Error() string { return e.Message }

// Service orchestrates checkout: validation gates, pricing, zone matching and
// the atomic order write.
type Service struct {
	zones     ZoneDirectory
	pricer    Pricer
	repo      OrderRepository
	validator *Validator
	payments  PaymentConfig
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService constructs the orchestrator. Metrics may be nil.
func NewService(zoneDir ZoneDirectory, pricer Pricer, repo OrderRepository, payments PaymentConfig, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		zones:     zoneDir,
		pricer:    pricer,
		repo:      repo,
		validator: NewValidator(payments),
		payments:  payments,
		logger:    logger,
		metrics:   metrics,
	}
}

// PaymentOptions returns the enabled methods and their targets.
func (s *Service) PaymentOptions(ctx context.Context) (PaymentConfig, error) {
	targets, err := s.repo.PaymentTargets(ctx)
	if err != nil {
		return PaymentConfig{}, err
	}
	return PaymentConfig{EnabledMethods: s.payments.EnabledMethods, Targets: targets}, nil
}

// Quote prices the cart against the selected zone's fee. An unset or unknown
// zone quotes with a zero fee so the cart stays usable while the user picks.
func (s *Service) Quote(ctx context.Context, in OrderInput, customer *pricing.CustomerProfile, loyalty pricing.LoyaltySettings) (pricing.CheckoutTotals, error) {
	fee := 0.0
	if in.ZoneID != 0 {
		zone, err := s.zones.Get(ctx, in.ZoneID)
		if err == nil {
			fee = zone.DeliveryFee
		} else if !errors.Is(err, zones.ErrNotFound) {
			return pricing.CheckoutTotals{}, err
		}
	}
	loyalty.RedeemRequested = loyalty.RedeemRequested && in.RedeemPoints
	return s.pricer.ComputeTotals(ctx, pricing.QuoteInput{
		Lines:       in.Lines,
		Customer:    customer,
		Coupon:      in.Coupon,
		Loyalty:     loyalty,
		DeliveryFee: fee,
	}), nil
}

// Validate runs all gates for the order and returns the collected failures.
func (s *Service) Validate(ctx context.Context, in OrderInput, lang i18n.Lang) ([]FieldError, error) {
	var zone *zones.DeliveryZone
	if in.ZoneID != 0 {
		z, err := s.zones.Get(ctx, in.ZoneID)
		switch {
		case err == nil:
			zone = z
		case errors.Is(err, zones.ErrNotFound):
			// leave zone nil, the validator reports it
		default:
			return nil, err
		}
	}
	return s.validator.Validate(in, zone, lang, time.Now()), nil
}

// Submit validates, prices and persists the order in one pass. Validation
// failures come back as *ValidationError; backend rejections as *SubmitError
// carrying the message the store raised, localized per the Arabic preference.
func (s *Service) Submit(ctx context.Context, key uuid.UUID, in OrderInput, customer *pricing.CustomerProfile, loyalty pricing.LoyaltySettings, lang i18n.Lang) (OrderReceipt, error) {
	fieldErrs, err := s.Validate(ctx, in, lang)
	if err != nil {
		return OrderReceipt{}, err
	}
	if len(fieldErrs) > 0 {
		return OrderReceipt{}, &ValidationError{Fields: fieldErrs}
	}

	totals, err := s.Quote(ctx, in, customer, loyalty)
	if err != nil {
		return OrderReceipt{}, err
	}

	orderID, err := s.repo.CreateOrder(ctx, key, in, totals)
	if err != nil {
		s.logger.Error("order creation failed", "error", err, "idempotency_key", key)
		return OrderReceipt{}, &SubmitError{Message: i18n.BackendError(backendMessage(err), lang)}
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.logger.Info("order created",
		"order_id", orderID,
		"zone_id", in.ZoneID,
		"total", totals.Total,
		"degraded", totals.Degraded,
	)
	return OrderReceipt{OrderID: orderID, Totals: totals}, nil
}

// Session is one customer's checkout flow: the state machine, the locator and
// the announcement queue live here so concurrent sessions stay isolated.
type Session struct {
	svc     *Service
	machine *Machine
	locator *Locator
	notices *notify.Queue
	lang    i18n.Lang
	key     uuid.UUID
}

// NewSession opens a checkout session.
func (s *Service) NewSession(provider FixProvider, notices *notify.Queue, lang i18n.Lang) *Session {
	return &Session{
		svc:     s,
		machine: NewMachine(),
		locator: NewLocator(provider, s.logger),
		notices: notices,
		lang:    lang,
		key:     uuid.New(),
	}
}

// State returns the session's current phase.
func (s *Session) State() State { return s.machine.Current() }

// Locator exposes the session's locator for manual pinning.
func (s *Session) Locator() *Locator { return s.locator }

// Locate acquires a position and detects the delivery zone for it. Location
// failures are announced, never fatal: the user can still pin manually.
func (s *Session) Locate(ctx context.Context) (*zones.DeliveryZone, error) {
	if err := s.machine.Transition(StateLocating); err != nil {
		return nil, err
	}
	defer s.machine.Transition(StateEditing)

	fix, err := s.locator.Acquire(ctx)
	if err != nil {
		s.notices.Push(notify.KindWarning, locationMessage(err))
		return nil, err
	}

	list, err := s.svc.zones.List(ctx)
	if err != nil {
		return nil, err
	}
	zone := zones.FindNearest(fix.Point, list)
	if zone != nil {
		s.notices.PushOnce("zone-detected", notify.KindSuccess, i18n.Message{
			Ar: fmt.Sprintf(i18n.MsgZoneDetected.Ar, zone.Name.Ar),
			En: fmt.Sprintf(i18n.MsgZoneDetected.En, zone.Name.En),
		})
	}
	return zone, nil
}

// Submit runs the guarded submission. A second submit while one is in flight
// is rejected outright.
func (s *Session) Submit(ctx context.Context, in OrderInput, customer *pricing.CustomerProfile, loyalty pricing.LoyaltySettings) (OrderReceipt, error) {
	if s.machine.InFlight() {
		return OrderReceipt{}, ErrSubmissionInFlight
	}
	if err := s.machine.Transition(StateSubmitting); err != nil {
		return OrderReceipt{}, ErrSubmissionInFlight
	}

	receipt, err := s.svc.Submit(ctx, s.key, in, customer, loyalty, s.lang)
	if err != nil {
		s.machine.Transition(StateFailed)
		var serr *SubmitError
		if errors.As(err, &serr) {
			s.notices.Push(notify.KindError, i18n.Message{Ar: serr.Message, En: serr.Message})
		}
		return OrderReceipt{}, err
	}
	s.machine.Transition(StateSucceeded)
	return receipt, nil
}

func locationMessage(err error) i18n.Message {
	switch {
	case errors.Is(err, ErrLocationDenied):
		return i18n.MsgLocationDenied
	case errors.Is(err, ErrLocationTimeout):
		return i18n.MsgLocationTimeout
	default:
		return i18n.MsgLocationUnavailable
	}
}
