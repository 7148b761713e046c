package rbac

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubPerms struct {
	granted map[int64][]string
	err     error
}

func (s stubPerms) EffectivePermissions(_ context.Context, userID int64) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.granted[userID], nil
}

func protected(m Middleware, perms ...string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return m.Authenticate(m.RequireAny(perms...)(ok))
}

func doRequest(t *testing.T, h http.Handler, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ledger", nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAnyGrantsMatchingPermission(t *testing.T) {
	m := Middleware{Service: stubPerms{granted: map[int64][]string{7: {PermLedgerView}}}}

	rec := doRequest(t, protected(m, PermLedgerView, PermSettlementCreate), "7")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAnyRejectsMissingPermission(t *testing.T) {
	m := Middleware{Service: stubPerms{granted: map[int64][]string{7: {PermZonesManage}}}}

	rec := doRequest(t, protected(m, PermSettlementVoid), "7")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyRejectsAnonymous(t *testing.T) {
	m := Middleware{Service: stubPerms{}}

	require.Equal(t, http.StatusForbidden, doRequest(t, protected(m, PermLedgerView), "").Code)
	require.Equal(t, http.StatusForbidden, doRequest(t, protected(m, PermLedgerView), "not-a-number").Code)
}

func TestRequireAnyLookupFailureIsServerError(t *testing.T) {
	m := Middleware{Service: stubPerms{err: errors.New("db down")}}

	rec := doRequest(t, protected(m, PermLedgerView), "7")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPermissionMatchIsCaseInsensitive(t *testing.T) {
	m := Middleware{Service: stubPerms{granted: map[int64][]string{7: {"Ledger.View"}}}}

	rec := doRequest(t, protected(m, PermLedgerView), "7")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthenticatePopulatesContext(t *testing.T) {
	var got int64
	var ok bool
	h := Middleware{}.Authenticate(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = UserFromContext(r.Context())
	}))

	doRequest(t, h, "42")
	require.True(t, ok)
	require.Equal(t, int64(42), got)
}
