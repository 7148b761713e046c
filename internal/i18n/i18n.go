// Package i18n carries the bilingual (Arabic/English) message catalog shared
// by the checkout and settlement flows.
package i18n

import (
	"fmt"
	"unicode"

	"golang.org/x/text/language"
)

// Lang selects one of the two supported languages.
type Lang string

const (
	LangAr Lang = "ar"
	LangEn Lang = "en"
)

// Message is a single localized message pair.
type Message struct {
	Ar string
	En string
}

// In returns the message text for the given language, defaulting to Arabic.
func (m Message) In(lang Lang) string {
	if lang == LangEn {
		return m.En
	}
	return m.Ar
}

// Format applies fmt arguments to both variants.
func (m Message) Format(args ...any) Message {
	return Message{
		Ar: fmt.Sprintf(m.Ar, args...),
		En: fmt.Sprintf(m.En, args...),
	}
}

// Match resolves an Accept-Language header value to a supported Lang.
// ParseAcceptLanguage orders tags by quality, so the first supported base
// language wins; anything unsupported falls back to Arabic.
func Match(acceptLanguage string) Lang {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return LangAr
	}
	for _, tag := range tags {
		base, _ := tag.Base()
		switch base.String() {
		case "en":
			return LangEn
		case "ar":
			return LangAr
		}
	}
	return LangAr
}

// ContainsArabic reports whether s carries at least one Arabic-script rune.
func ContainsArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}

// BackendError prefers an Arabic-script message coming from the backend;
// anything else is replaced with the generic fallback so raw driver errors
// never reach the user.
func BackendError(raw string, lang Lang) string {
	if ContainsArabic(raw) {
		return raw
	}
	return MsgGenericFailure.In(lang)
}

// Checkout validation messages.
var (
	MsgNameInvalid = Message{
		Ar: "الاسم يجب أن يكون بين 3 و50 حرفًا عربيًا أو لاتينيًا",
		En: "Name must be 3-50 Arabic or Latin letters",
	}
	MsgPhoneInvalid = Message{
		Ar: "رقم الهاتف يجب أن يبدأ بـ 77 أو 73 أو 71 أو 70 ويتكون من 9 أرقام",
		En: "Phone must start with 77, 73, 71 or 70 and be 9 digits",
	}
	MsgAddressInvalid = Message{
		Ar: "العنوان يجب أن يكون بين 10 و200 حرف",
		En: "Address must be between 10 and 200 characters",
	}
	MsgPaymentMethodUnavailable = Message{
		Ar: "طريقة الدفع المختارة غير متاحة",
		En: "The selected payment method is not available",
	}
	MsgPaymentProofRequired = Message{
		Ar: "يرجى إدخال رقم الحوالة أو إرفاق صورة الإيصال",
		En: "A transfer reference number or receipt screenshot is required",
	}
	MsgPaymentTargetRequired = Message{
		Ar: "يرجى اختيار البنك أو المستلم",
		En: "A target bank or recipient must be selected",
	}
	MsgCashWithProof = Message{
		Ar: "الدفع نقدًا لا يتطلب إثبات دفع",
		En: "Cash payment must not carry payment proof",
	}
	MsgZoneRequired = Message{
		Ar: "يرجى اختيار منطقة توصيل فعّالة",
		En: "An active delivery zone must be selected",
	}
	MsgCoordinateRequired = Message{
		Ar: "يرجى تحديد موقعك على الخريطة قبل إتمام الطلب",
		En: "A map location is required before checkout",
	}
	MsgZoneMismatch = Message{
		Ar: "موقعك يبعد %s عن منطقة التوصيل المختارة",
		En: "Your location is %s away from the selected delivery zone",
	}
	MsgScheduleInPast = Message{
		Ar: "وقت التوصيل المجدول يجب أن يكون في المستقبل",
		En: "The scheduled delivery time must be in the future",
	}
	MsgEmptyCart = Message{
		Ar: "سلة التسوق فارغة",
		En: "The cart is empty",
	}
)

// Zone announcements.
var (
	MsgZoneDetected = Message{
		Ar: "تم تحديد منطقة التوصيل: %s",
		En: "Delivery zone detected: %s",
	}
)

// Geolocation failures, classified by error code.
var (
	MsgLocationDenied = Message{
		Ar: "تم رفض إذن الوصول إلى الموقع، يمكنك تحديد موقعك يدويًا على الخريطة",
		En: "Location permission was denied, you can pick your location on the map",
	}
	MsgLocationTimeout = Message{
		Ar: "انتهت مهلة تحديد الموقع، يمكنك تحديد موقعك يدويًا على الخريطة",
		En: "Locating timed out, you can pick your location on the map",
	}
	MsgLocationUnavailable = Message{
		Ar: "تعذر تحديد موقعك، يمكنك تحديد موقعك يدويًا على الخريطة",
		En: "Your location could not be determined, pick it on the map instead",
	}
)

// Settlement workspace messages.
var (
	MsgSelectDebitCredit = Message{
		Ar: "يرجى اختيار قيد مدين وقيد دائن",
		En: "Select both a debit and a credit item",
	}
	MsgCurrencyMismatch = Message{
		Ar: "لا يمكن التسوية بين قيدين بعملتين مختلفتين",
		En: "Cannot allocate between items of different currencies",
	}
	MsgAmountNotPositive = Message{
		Ar: "مبلغ التسوية يجب أن يكون أكبر من صفر",
		En: "The allocation amount must be greater than zero",
	}
	MsgAmountExceedsOpen = Message{
		Ar: "مبلغ التسوية يتجاوز الرصيد المفتوح المتاح",
		En: "The allocation amount exceeds the available open balance",
	}
	MsgNoAllocations = Message{
		Ar: "لا توجد تسويات مقترحة للإرسال",
		En: "There are no proposed allocations to submit",
	}
	MsgReasonRequired = Message{
		Ar: "يرجى إدخال سبب الإلغاء",
		En: "A reversal reason is required",
	}
	MsgRequestTimeout = Message{
		Ar: "انتهت مهلة الطلب، يرجى المحاولة مرة أخرى",
		En: "The request timed out, please try again",
	}
)

// Generic fallback.
var (
	MsgGenericFailure = Message{
		Ar: "حدث خطأ غير متوقع، يرجى المحاولة مرة أخرى",
		En: "Something went wrong, please try again",
	}
)
