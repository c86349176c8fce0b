package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/connkit/pkg/httpserver"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
)

type fakeSource struct {
	status  lifecycle.Status
	session string
	counts  map[lifecycle.Signal]uint64
}

func (f fakeSource) Status() lifecycle.Status            { return f.status }
func (f fakeSource) IsConnected() bool                   { return f.status == lifecycle.StatusConnected }
func (f fakeSource) Session() string                     { return f.session }
func (f fakeSource) Counts() map[lifecycle.Signal]uint64 { return f.counts }

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes_Healthz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status lifecycle.Status
		code   int
	}{
		{lifecycle.StatusConnected, http.StatusOK},
		{lifecycle.StatusConnecting, http.StatusServiceUnavailable},
		{lifecycle.StatusDisconnected, http.StatusServiceUnavailable},
		{lifecycle.StatusClosed, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			rec := serve(httpserver.Routes(fakeSource{status: tt.status}, nil), "/healthz")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, string(tt.status), rec.Body.String())
		})
	}
}

func TestRoutes_Readyz(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("ping failed") }
	src := fakeSource{status: lifecycle.StatusConnected}

	rec := serve(httpserver.Routes(src, nil, ok, ok), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())

	rec = serve(httpserver.Routes(src, nil, ok, fail), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT_READY", rec.Body.String())
}

func TestRoutes_Status(t *testing.T) {
	t.Parallel()

	src := fakeSource{
		status:  lifecycle.StatusConnected,
		session: "5f1c",
		counts: map[lifecycle.Signal]uint64{
			lifecycle.SignalOpen:        1,
			lifecycle.SignalReconnected: 2,
		},
	}

	rec := serve(httpserver.Routes(src, nil), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got httpserver.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, lifecycle.StatusConnected, got.Status)
	assert.True(t, got.Connected)
	assert.Equal(t, "5f1c", got.Session)
	assert.Equal(t, uint64(2), got.Counts[lifecycle.SignalReconnected])
}

func TestRoutes_UnknownPath(t *testing.T) {
	t.Parallel()

	rec := serve(httpserver.Routes(fakeSource{}, nil), "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_RequestID(t *testing.T) {
	t.Parallel()

	h := httpserver.Routes(fakeSource{status: lifecycle.StatusConnected}, nil)

	rec := serve(h, "/healthz")
	assert.Len(t, rec.Header().Get(httpserver.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpserver.RequestIDHeader, "probe-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "probe-42", rec.Header().Get(httpserver.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(httpserver.RequestIDHeader, "bad id!")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id!", rec.Header().Get(httpserver.RequestIDHeader))
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var seen string
	h := httpserver.RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		attr, ok := httpserver.RequestIDExtractor()(r.Context())
		require.True(t, ok)
		seen = attr.Value.String()
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(httpserver.RequestIDHeader, "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", seen)

	_, ok := httpserver.RequestIDExtractor()(context.Background())
	assert.False(t, ok)
}
