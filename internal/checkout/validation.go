package checkout

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/dukkan-erp/dukkan-erp/internal/zones"
)

var (
	// Arabic or Latin letters and spaces, 3 to 50 characters.
	nameRe = regexp.MustCompile(`^[\p{Arabic}A-Za-z ]{3,50}$`)
	// Yemeni mobile numbers: nine digits starting with a carrier prefix.
	phoneRe = regexp.MustCompile(`^(77|73|71|70)[0-9]{7}$`)
)

const (
	addressMinRunes = 10
	addressMaxRunes = 200
)

// FieldError is a localized validation failure bound to an input field.
type FieldError struct {
	Field string
	Msg   i18n.Message
	Args  []any
}

// Localize renders the failure message for the given language.
func (e FieldError) Localize(lang i18n.Lang) string {
	if len(e.Args) > 0 {
		return e.Msg.Format(e.Args...).In(lang)
	}
	return e.Msg.In(lang)
}

// ValidationError wraps field errors so callers can distinguish gate failures
// from infrastructure errors.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return "checkout: validation failed"
}

// Validator runs the pre-submission gates.
type Validator struct {
	payments PaymentConfig
}

// NewValidator constructs a validator against the current payment setup.
func NewValidator(payments PaymentConfig) *Validator {
	return &Validator{payments: payments}
}

// Validate checks the order against every gate and collects all failures so
// they can be surfaced at once. The zone may be nil when the id is unset.
func (v *Validator) Validate(in OrderInput, zone *zones.DeliveryZone, lang i18n.Lang, now time.Time) []FieldError {
	var errs []FieldError
	add := func(field string, msg i18n.Message, args ...any) {
		errs = append(errs, FieldError{Field: field, Msg: msg, Args: args})
	}

	if !nameRe.MatchString(in.Customer.Name) {
		add("name", i18n.MsgNameInvalid)
	}
	if !phoneRe.MatchString(in.Customer.Phone) {
		add("phone", i18n.MsgPhoneInvalid)
	}
	if n := utf8.RuneCountInString(in.AddressText); n < addressMinRunes || n > addressMaxRunes {
		add("address", i18n.MsgAddressInvalid)
	}

	errs = append(errs, v.validatePayment(in.Payment)...)
	errs = append(errs, v.validateZone(in, zone, lang)...)

	if in.ScheduledAt != nil && !in.ScheduledAt.After(now) {
		add("scheduled_at", i18n.MsgScheduleInPast)
	}
	if len(in.Lines) == 0 {
		add("lines", i18n.MsgEmptyCart)
	}
	return errs
}

func (v *Validator) validatePayment(p PaymentDetails) []FieldError {
	var errs []FieldError
	add := func(field string, msg i18n.Message) {
		errs = append(errs, FieldError{Field: field, Msg: msg})
	}

	if !v.payments.MethodEnabled(p.Method) {
		add("payment.method", i18n.MsgPaymentMethodUnavailable)
		return errs
	}
	switch {
	case p.Method.RequiresProof():
		if !p.HasProof() {
			add("payment.proof", i18n.MsgPaymentProofRequired)
		}
		if p.TargetID == 0 || !v.payments.HasTarget(p.Method, p.TargetID) {
			add("payment.target_id", i18n.MsgPaymentTargetRequired)
		}
	case p.Method == PaymentCash:
		// Cash never carries transfer proof; a populated proof field means
		// the selection and the evidence disagree.
		if p.HasProof() || p.TargetID != 0 {
			add("payment.proof", i18n.MsgCashWithProof)
		}
	}
	return errs
}

func (v *Validator) validateZone(in OrderInput, zone *zones.DeliveryZone, lang i18n.Lang) []FieldError {
	var errs []FieldError
	add := func(field string, msg i18n.Message, args ...any) {
		errs = append(errs, FieldError{Field: field, Msg: msg, Args: args})
	}

	if in.ZoneID == 0 || zone == nil {
		add("zone_id", i18n.MsgZoneRequired)
		return errs
	}
	if !zone.IsActive {
		add("zone_id", i18n.MsgZoneRequired)
	}
	if in.Coordinate == nil {
		add("coordinate", i18n.MsgCoordinateRequired)
		return errs
	}

	match := zones.VerifyMatch(*in.Coordinate, *zone)
	if match.Checked && !match.IsInside {
		add("zone_id", i18n.MsgZoneMismatch, geo.FormatDistance(match.Distance, lang))
	}
	return errs
}
