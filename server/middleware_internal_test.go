package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/gistree/server/internal/errors"
	"github.com/gistree/server/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.Public(apperrors.ErrInvalidRequest, "bad"), http.StatusBadRequest, "invalid_request"},
		{apperrors.Wrapf(apperrors.ErrTokenExpired, "inspect"), http.StatusUnauthorized, "unauthorized"},
		{apperrors.ErrInvalidCSRF, http.StatusForbidden, "invalid_csrf_token"},
		{apperrors.Public(apperrors.ErrForbidden, "locked"), http.StatusForbidden, "forbidden"},
		{apperrors.Mark(errors.New("no rows"), apperrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{apperrors.ErrConflict, http.StatusConflict, "conflict"},
		{errors.New("disk full"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			require.Equal(t, tc.status, statusFor(tc.err))
			require.Equal(t, tc.code, errorCode(tc.err))
		})
	}
}

func TestWriteError_HidesInternalMessages(t *testing.T) {
	s := &Server{metrics: metrics.New()}

	rec := httptest.NewRecorder()
	s.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("sqlite: database is locked"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal_error","message":"Internal Server Error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperrors.Public(apperrors.ErrNotFound, "User not found"))
	require.JSONEq(t, `{"error":"not_found","message":"User not found"}`, rec.Body.String())
}

func TestRecoverMiddleware(t *testing.T) {
	s := &Server{metrics: metrics.New()}
	h := ChainMiddleware(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}, s.LoggingMiddleware("GET /panic"), s.RecoverMiddleware)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestClientLimiter(t *testing.T) {
	now := time.Date(2025, 12, 24, 20, 0, 0, 0, time.UTC)
	l := newClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	require.True(t, l.allow("a"))
	require.False(t, l.allow("a"))
	require.True(t, l.allow("b"))

	now = now.Add(time.Second)
	require.True(t, l.allow("a"))

	now = now.Add(idleLimiterTTL + time.Minute)
	require.True(t, l.allow("c"))
	require.Equal(t, 1, l.size())
}

func TestClientAddress(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:40000"
	require.Equal(t, "203.0.113.9", clientAddress(r))

	r.RemoteAddr = "unix-socket"
	require.Equal(t, "unix-socket", clientAddress(r))
}
