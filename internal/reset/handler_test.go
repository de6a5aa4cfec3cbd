package reset

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitecrew/sitecrew/internal/platform/httpx"
	"github.com/sitecrew/sitecrew/internal/ratelimit"
	_ "github.com/sitecrew/sitecrew/testing"
)

func newResetRouter(svc *Service, requestLimit *ratelimit.DualLimiter, consumeLimit *ratelimit.Limiter) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, svc, requestLimit, consumeLimit)
	router := chi.NewRouter()
	handler.MountRoutes(router)
	return router
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:4242"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleForgotAcksIdentically(t *testing.T) {
	svc := newTestService(seededIdentities(), newMemStore(), &captureNotifier{})
	router := newResetRouter(svc,
		ratelimit.NewDual(100, time.Minute, 100, time.Minute, false),
		ratelimit.New(100, time.Minute, false))

	known := postJSON(router, "/forgot-password", `{"email":"a@x.com"}`)
	unknown := postJSON(router, "/forgot-password", `{"email":"nobody@x.com"}`)
	invalid := postJSON(router, "/forgot-password", `{"email":"not-an-email"}`)
	malformed := postJSON(router, "/forgot-password", `{"email":`)

	for _, rec := range []*httptest.ResponseRecorder{known, unknown, invalid, malformed} {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, known.Body.String(), rec.Body.String())
		assert.Equal(t, known.Header().Get("Content-Type"), rec.Header().Get("Content-Type"))
	}

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(known.Body.Bytes(), &body))
	assert.Equal(t, httpx.MsgResetRequested, body.Message)
}

func TestHandleForgotRateLimitsTargetEmail(t *testing.T) {
	svc := newTestService(seededIdentities(), newMemStore(), &captureNotifier{})
	router := newResetRouter(svc,
		ratelimit.NewDual(100, time.Minute, 2, time.Minute, false),
		ratelimit.New(100, time.Minute, false))

	postJSON(router, "/forgot-password", `{"email":"a@x.com"}`)
	postJSON(router, "/forgot-password", `{"email":"A@x.com"}`)
	rec := postJSON(router, "/forgot-password", `{"email":"a@x.com"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ratelimit.LimitedMessage, body.Message)
}

func TestHandleResetRoundTrip(t *testing.T) {
	identities := seededIdentities()
	mail := &captureNotifier{}
	svc := newTestService(identities, newMemStore(), mail)
	router := newResetRouter(svc,
		ratelimit.NewDual(100, time.Minute, 100, time.Minute, false),
		ratelimit.New(100, time.Minute, false))

	require.NoError(t, svc.Request(context.Background(), "a@x.com", RequestMeta{}))
	secret := secretFromLink(t, mail.links[0])

	ok := postJSON(router, "/reset-password", `{"token":"`+secret+`","newPassword":"N3w!Password"}`)
	require.Equal(t, http.StatusOK, ok.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &body))
	assert.Equal(t, httpx.MsgResetDone, body.Message)
	assert.NotEmpty(t, identities.updated[7])

	reuse := postJSON(router, "/reset-password", `{"token":"`+secret+`","newPassword":"0ther!Password"}`)
	assert.Equal(t, http.StatusBadRequest, reuse.Code)
}

func TestHandleResetRejections(t *testing.T) {
	svc := newTestService(seededIdentities(), newMemStore(), &captureNotifier{})
	router := newResetRouter(svc,
		ratelimit.NewDual(100, time.Minute, 100, time.Minute, false),
		ratelimit.New(100, time.Minute, false))

	tests := []struct {
		name string
		body string
	}{
		{name: "unknown token", body: `{"token":"never-issued","newPassword":"N3w!Password"}`},
		{name: "missing token", body: `{"newPassword":"N3w!Password"}`},
		{name: "short password", body: `{"token":"whatever","newPassword":"short"}`},
		{name: "malformed body", body: `{"token":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(router, "/reset-password", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body struct {
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, httpx.MsgResetInvalid, body.Message)
		})
	}
}

func TestHandleResetOriginQuota(t *testing.T) {
	svc := newTestService(seededIdentities(), newMemStore(), &captureNotifier{})
	router := newResetRouter(svc,
		ratelimit.NewDual(100, time.Minute, 100, time.Minute, false),
		ratelimit.New(2, time.Minute, false))

	postJSON(router, "/reset-password", `{"token":"a","newPassword":"N3w!Password"}`)
	postJSON(router, "/reset-password", `{"token":"b","newPassword":"N3w!Password"}`)
	rec := postJSON(router, "/reset-password", `{"token":"c","newPassword":"N3w!Password"}`)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
