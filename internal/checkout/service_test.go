package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/dukkan-erp/dukkan-erp/internal/notify"
	"github.com/dukkan-erp/dukkan-erp/internal/observability"
	"github.com/dukkan-erp/dukkan-erp/internal/pricing"
	"github.com/dukkan-erp/dukkan-erp/internal/zones"
)

type fakeZoneDir struct {
	list []zones.DeliveryZone
}

func (f *fakeZoneDir) List(ctx context.Context) ([]zones.DeliveryZone, error) {
	return f.list, nil
}

func (f *fakeZoneDir) Get(ctx context.Context, id int64) (*zones.DeliveryZone, error) {
	for i := range f.list {
		if f.list[i].ID == id {
			return &f.list[i], nil
		}
	}
	return nil, zones.ErrNotFound
}

type fakePricer struct{}

func (fakePricer) ComputeTotals(ctx context.Context, in pricing.QuoteInput) pricing.CheckoutTotals {
	var sub float64
	for _, l := range in.Lines {
		sub += l.PricePerUnit * l.EffectiveQuantity()
	}
	fee := in.DeliveryFee
	if sub == 0 {
		fee = 0
	}
	return pricing.CheckoutTotals{Subtotal: sub, DeliveryFee: fee, Total: sub + fee}
}

type fakeOrders struct {
	err   error
	block chan struct{}

	mu      sync.Mutex
	created int
	lastKey uuid.UUID
}

func (f *fakeOrders) CreateOrder(ctx context.Context, key uuid.UUID, in OrderInput, totals pricing.CheckoutTotals) (int64, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKey = key
	if f.err != nil {
		return 0, f.err
	}
	f.created++
	return 1001, nil
}

func (f *fakeOrders) PaymentTargets(ctx context.Context) ([]PaymentTarget, error) {
	return []PaymentTarget{{ID: 1, Method: PaymentKuraimi, Name: "بنك الكريمي"}}, nil
}

func (f *fakeOrders) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

func newTestService(orders *fakeOrders) (*Service, *fakeZoneDir) {
	zone := activeZone()
	zone.DeliveryFee = 20
	dir := &fakeZoneDir{list: []zones.DeliveryZone{*zone}}
	svc := NewService(dir, fakePricer{}, orders, testPayments, slog.Default(), nil)
	return svc, dir
}

func pricedOrder() OrderInput {
	in := validOrder()
	in.Lines = []pricing.CartLine{{ItemID: 1, UnitType: pricing.UnitPiece, Quantity: 1, PricePerUnit: 100}}
	return in
}

func TestServiceSubmitHappyPath(t *testing.T) {
	orders := &fakeOrders{}
	svc, _ := newTestService(orders)

	receipt, err := svc.Submit(context.Background(), uuid.New(), pricedOrder(), nil, pricing.LoyaltySettings{}, i18n.LangAr)
	require.NoError(t, err)
	require.Equal(t, int64(1001), receipt.OrderID)
	require.Equal(t, 120.0, receipt.Totals.Total)
	require.Equal(t, 1, orders.createdCount())
}

func TestServiceSubmitValidationBlocked(t *testing.T) {
	orders := &fakeOrders{}
	svc, _ := newTestService(orders)

	in := pricedOrder()
	in.Customer.Phone = "781234567"

	_, err := svc.Submit(context.Background(), uuid.New(), in, nil, pricing.LoyaltySettings{}, i18n.LangAr)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, 0, orders.createdCount(), "nothing may be written on a gate failure")
}

func TestServiceSubmitPreservesArabicBackendMessage(t *testing.T) {
	raised := "الكمية المطلوبة غير متوفرة في المخزون"
	orders := &fakeOrders{err: &pgconn.PgError{Code: "P0001", Message: raised}}
	svc, _ := newTestService(orders)

	for _, lang := range []i18n.Lang{i18n.LangAr, i18n.LangEn} {
		_, err := svc.Submit(context.Background(), uuid.New(), pricedOrder(), nil, pricing.LoyaltySettings{}, lang)
		var sErr *SubmitError
		require.ErrorAs(t, err, &sErr)
		require.Equal(t, raised, sErr.Message, "operator-written Arabic messages pass through verbatim")
	}
}

func TestServiceSubmitGenericFallbackForRawErrors(t *testing.T) {
	orders := &fakeOrders{err: errors.New("dial tcp 10.0.0.1:5432: connection refused")}
	svc, _ := newTestService(orders)

	_, err := svc.Submit(context.Background(), uuid.New(), pricedOrder(), nil, pricing.LoyaltySettings{}, i18n.LangEn)
	var sErr *SubmitError
	require.ErrorAs(t, err, &sErr)
	require.Equal(t, i18n.MsgGenericFailure.En, sErr.Message)
	require.NotContains(t, sErr.Message, "dial tcp", "raw driver errors never reach the user")
}

func TestServiceSubmitBumpsOrdersCounter(t *testing.T) {
	metrics := observability.NewMetrics()
	zone := activeZone()
	zone.DeliveryFee = 20
	dir := &fakeZoneDir{list: []zones.DeliveryZone{*zone}}
	svc := NewService(dir, fakePricer{}, &fakeOrders{}, testPayments, slog.Default(), metrics)

	_, err := svc.Submit(context.Background(), uuid.New(), pricedOrder(), nil, pricing.LoyaltySettings{}, i18n.LangAr)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "dukkan_orders_created_total 1")
}

func TestServiceSubmitFailureDoesNotBumpOrdersCounter(t *testing.T) {
	metrics := observability.NewMetrics()
	zone := activeZone()
	zone.DeliveryFee = 20
	dir := &fakeZoneDir{list: []zones.DeliveryZone{*zone}}
	orders := &fakeOrders{err: errors.New("down")}
	svc := NewService(dir, fakePricer{}, orders, testPayments, slog.Default(), metrics)

	_, err := svc.Submit(context.Background(), uuid.New(), pricedOrder(), nil, pricing.LoyaltySettings{}, i18n.LangAr)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "dukkan_orders_created_total 0")
}

func TestQuoteUnknownZoneQuotesWithoutFee(t *testing.T) {
	svc, _ := newTestService(&fakeOrders{})
	in := pricedOrder()
	in.ZoneID = 99

	totals, err := svc.Quote(context.Background(), in, nil, pricing.LoyaltySettings{})
	require.NoError(t, err)
	require.Equal(t, 0.0, totals.DeliveryFee)
	require.Equal(t, 100.0, totals.Total)
}

func TestSessionRejectsConcurrentSubmit(t *testing.T) {
	orders := &fakeOrders{block: make(chan struct{})}
	svc, _ := newTestService(orders)

	provider := &scriptedProvider{highErr: errors.New("off")}
	sess := svc.NewSession(provider, notify.NewQueue(), i18n.LangAr)

	done := make(chan error, 1)
	go func() {
		_, err := sess.Submit(context.Background(), pricedOrder(), nil, pricing.LoyaltySettings{})
		done <- err
	}()

	require.Eventually(t, func() bool { return sess.State() == StateSubmitting },
		time.Second, 5*time.Millisecond)

	_, err := sess.Submit(context.Background(), pricedOrder(), nil, pricing.LoyaltySettings{})
	require.ErrorIs(t, err, ErrSubmissionInFlight)

	close(orders.block)
	require.NoError(t, <-done)
	require.Equal(t, StateSucceeded, sess.State())
	require.Equal(t, 1, orders.createdCount())
}

func TestSessionLocateAnnouncesZoneOnce(t *testing.T) {
	orders := &fakeOrders{}
	svc, _ := newTestService(orders)

	provider := &scriptedProvider{
		fastFix: Fix{Point: geo.Point{Lat: 15.35, Lng: 44.20}},
		highErr: errors.New("off"),
	}
	notices := notify.NewQueue()
	sess := svc.NewSession(provider, notices, i18n.LangAr)

	zone, err := sess.Locate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, zone)
	require.Equal(t, int64(1), zone.ID)

	_, err = sess.Locate(context.Background())
	require.NoError(t, err)

	msgs := notices.Drain()
	require.Len(t, msgs, 1, "zone detection is announced once per session")
	require.Equal(t, notify.KindSuccess, msgs[0].Kind)
	require.Contains(t, msgs[0].Message.Ar, "حدة")
}

func TestSessionLocateDeniedAnnouncesWarning(t *testing.T) {
	orders := &fakeOrders{}
	svc, _ := newTestService(orders)

	provider := &scriptedProvider{
		fastErr:    errors.New("denied"),
		permission: PermissionDenied,
	}
	notices := notify.NewQueue()
	sess := svc.NewSession(provider, notices, i18n.LangAr)

	_, err := sess.Locate(context.Background())
	require.ErrorIs(t, err, ErrLocationDenied)
	require.Equal(t, StateEditing, sess.State(), "a location failure returns the session to editing")

	msgs := notices.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, notify.KindWarning, msgs[0].Kind)
	require.Equal(t, i18n.MsgLocationDenied, msgs[0].Message)
}
