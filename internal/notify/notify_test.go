package notify

import (
	"testing"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/stretchr/testify/require"
)

func TestPushAndDrain(t *testing.T) {
	q := NewQueue()
	q.Push(KindSuccess, i18n.MsgZoneDetected)
	q.Push(KindWarning, i18n.MsgZoneMismatch)

	out := q.Drain()
	require.Len(t, out, 2)
	require.Equal(t, KindSuccess, out[0].Kind)
	require.Empty(t, q.Drain())
}

func TestPushOnceDeduplicates(t *testing.T) {
	q := NewQueue()
	q.PushOnce("zone:5", KindSuccess, i18n.MsgZoneDetected)
	q.PushOnce("zone:5", KindSuccess, i18n.MsgZoneDetected)
	require.Len(t, q.Drain(), 1)

	// Draining does not forget one-time keys; Reset does.
	q.PushOnce("zone:5", KindSuccess, i18n.MsgZoneDetected)
	require.Empty(t, q.Drain())
	q.Reset()
	q.PushOnce("zone:5", KindSuccess, i18n.MsgZoneDetected)
	require.Len(t, q.Drain(), 1)
}
