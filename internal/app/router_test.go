package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukkan-erp/dukkan-erp/internal/rbac"
	"github.com/dukkan-erp/dukkan-erp/internal/zones"
)

type stubZoneRepo struct {
	list []zones.DeliveryZone
}

func (s stubZoneRepo) List(context.Context) ([]zones.DeliveryZone, error) {
	return s.list, nil
}

func (s stubZoneRepo) Get(_ context.Context, id int64) (*zones.DeliveryZone, error) {
	for i := range s.list {
		if s.list[i].ID == id {
			return &s.list[i], nil
		}
	}
	return nil, zones.ErrNotFound
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := stubZoneRepo{list: []zones.DeliveryZone{{
		ID:       1,
		Name:     zones.LocalizedName{Ar: "حدة", En: "Hadda"},
		IsActive: true,
		Circle:   &zones.Circle{Lat: 15.35, Lng: 44.20, Radius: 1000},
	}}}
	logger := slog.Default()
	return NewRouter(RouterParams{
		Logger:       logger,
		Config:       &Config{AppEnv: "development"},
		ZonesHandler: zones.NewHandler(logger, zones.NewService(repo)),
		RBACMiddleware: rbac.Middleware{
			Logger: logger,
		},
	})
}

func TestRouterServesHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterMountsZoneEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/zones", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Hadda")

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/zones/detect",
		strings.NewReader(`{"lat":15.35,"lng":44.20}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "حدة")
}
