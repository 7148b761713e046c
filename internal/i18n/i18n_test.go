package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	require.Equal(t, LangAr, Match("ar, en;q=0.8"))
	require.Equal(t, LangEn, Match("en-US,en;q=0.9"))
	require.Equal(t, LangAr, Match(""))
	require.Equal(t, LangAr, Match("fr-FR"))
	require.Equal(t, LangEn, Match("fr-FR, en;q=0.5"))
	require.Equal(t, LangAr, Match("not a header"))
}

func TestContainsArabic(t *testing.T) {
	require.True(t, ContainsArabic("رصيد غير كاف"))
	require.True(t, ContainsArabic("insufficient رصيد"))
	require.False(t, ContainsArabic("insufficient balance"))
	require.False(t, ContainsArabic(""))
}

func TestBackendErrorPrefersArabic(t *testing.T) {
	require.Equal(t, "الرصيد غير كاف", BackendError("الرصيد غير كاف", LangEn))
	require.Equal(t, MsgGenericFailure.In(LangEn), BackendError("pq: deadlock detected", LangEn))
	require.Equal(t, MsgGenericFailure.In(LangAr), BackendError("", LangAr))
}

func TestMessageFormat(t *testing.T) {
	m := MsgZoneMismatch.Format("3.0 كم")
	require.Equal(t, "موقعك يبعد 3.0 كم عن منطقة التوصيل المختارة", m.In(LangAr))
}
