package proxy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/proxy"
	"github.com/tracewayhq/traceway/storage"
)

type fakeStore struct {
	mu        sync.Mutex
	created   []storage.CreateSpanParams
	completed map[uuid.UUID]any
	usage     map[uuid.UUID]*storage.SpanUsage
	failed    map[uuid.UUID]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{completed: map[uuid.UUID]any{}, usage: map[uuid.UUID]*storage.SpanUsage{}, failed: map[uuid.UUID]string{}}
}

func (f *fakeStore) CreateSpan(ctx context.Context, p storage.CreateSpanParams) (*models.Span, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return &models.Span{ID: uuid.New(), TraceID: p.TraceID, Kind: p.Kind}, nil
}

func (f *fakeStore) CompleteSpan(ctx context.Context, id uuid.UUID, output any, usage *storage.SpanUsage) (*models.Span, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] = output
	f.usage[id] = usage
	return &models.Span{ID: id, Status: models.Status{Phase: models.StatusCompleted}}, nil
}

func (f *fakeStore) FailSpan(ctx context.Context, id uuid.UUID, errMsg string) (*models.Span, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = errMsg
	return &models.Span{ID: id, Status: models.Status{Phase: models.StatusFailed}}, nil
}

func TestProxy_NonRecognizedPathForwardsVerbatim(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	}))
	defer upstream.Close()
	u, _ := url.Parse(upstream.URL)

	store := newFakeStore()
	p := proxy.New(u, store, nil, nil, func(*http.Request) uuid.UUID { return uuid.New() })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	p.ServeHTTP(rr, req)

	assert.Equal(t, "pong", rr.Body.String())
	assert.Empty(t, store.created)
}

func TestProxy_RecognizedPathOpensAndCompletesSpan(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"usage":{"prompt_tokens":10,"completion_tokens":5}}`))
	}))
	defer upstream.Close()
	u, _ := url.Parse(upstream.URL)

	store := newFakeStore()
	p := proxy.New(u, store, proxy.PriceTable{u.Hostname() + "/gpt-4o": {InputPerToken: 0.01, OutputPerToken: 0.02}}, nil,
		func(*http.Request) uuid.UUID { return uuid.New() })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	p.ServeHTTP(rr, req)

	require.Len(t, store.created, 1)
	assert.Equal(t, "gpt-4o", store.created[0].Kind.Model)
	require.Len(t, store.completed, 1)
	require.Len(t, store.usage, 1)

	var usage *storage.SpanUsage
	for _, u := range store.usage {
		usage = u
	}
	require.NotNil(t, usage)
	require.NotNil(t, usage.InputTokens)
	require.NotNil(t, usage.OutputTokens)
	require.NotNil(t, usage.Cost)
	assert.Equal(t, int64(10), *usage.InputTokens)
	assert.Equal(t, int64(5), *usage.OutputTokens)
	assert.InDelta(t, 0.2, *usage.Cost, 1e-9)
}

func TestProxy_UnpricedModelLeavesCostNil(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"usage":{"prompt_tokens":10,"completion_tokens":5}}`))
	}))
	defer upstream.Close()
	u, _ := url.Parse(upstream.URL)

	store := newFakeStore()
	p := proxy.New(u, store, proxy.PriceTable{}, nil, func(*http.Request) uuid.UUID { return uuid.New() })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	p.ServeHTTP(rr, req)

	require.Len(t, store.usage, 1)
	for _, usage := range store.usage {
		assert.Nil(t, usage.Cost)
	}
}

func TestProxy_UpstreamErrorFailsSpan(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer upstream.Close()
	u, _ := url.Parse(upstream.URL)

	store := newFakeStore()
	p := proxy.New(u, store, nil, nil, func(*http.Request) uuid.UUID { return uuid.New() })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	p.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Len(t, store.failed, 1)
}
