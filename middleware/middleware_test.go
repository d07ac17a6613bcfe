package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracewayhq/traceway/middleware"
	"github.com/tracewayhq/traceway/storage"
)

func TestAddCorrelationID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	handler := middleware.AddCorrelationID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.CorrelationIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(middleware.CorrelationIDHeader))
}

func TestAddCorrelationID_PropagatesCallerSuppliedID(t *testing.T) {
	handler := middleware.AddCorrelationID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "caller-id-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "caller-id-123", rr.Header().Get(middleware.CorrelationIDHeader))
}

func TestCORS_AnswersPreflightDirectly(t *testing.T) {
	called := false
	handler := middleware.CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovererOnPanic_ConvertsToInternalServerError(t *testing.T) {
	handler := middleware.RecovererOnPanic()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestTenantKey_AttachesHeaderValue(t *testing.T) {
	var seen string
	handler := middleware.TenantKey()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = storage.TenantFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.TenantHeader, "acme-corp")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "acme-corp", seen)
}
