package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	e := echo.New()
	cases := []struct {
		db     Pinger
		status int
		body   string
	}{
		{nil, http.StatusOK, "ok"},
		{pingFunc(func(context.Context) error { return nil }), http.StatusOK, "ok"},
		{pingFunc(func(context.Context) error { return errors.New("down") }), http.StatusServiceUnavailable, "database unavailable"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/healthz", nil), rec)
		require.NoError(t, Health(tc.db)(c))
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.body, rec.Body.String())
	}
}
