// Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package proxy is the transparent LLM reverse proxy from spec.md §4.H:
// requests forward verbatim to a configured upstream, and requests matching
// a recognized chat/completions path are additionally instrumented into a
// running llm_call span that completes or fails once the response ends.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
)

// Preview/truncation sizes for span input/output capture (spec.md §4.H.4).
const (
	previewSize     = 2 * 1024
	bodyCeiling     = 256 * 1024
	truncatedMarker = "\n...[truncated]"
)

var recognizedPaths = []string{
	"/v1/chat/completions",
	"/v1/completions",
	"/v1/embeddings",
}

// PriceTable maps "provider/model" to {inputPerToken, outputPerToken} costs.
// Entries absent from the table price at nil ("unpriced"), distinct from a
// priced-at-zero model, per spec.md §9.
type PriceTable map[string]ModelPrice

// ModelPrice is the static per-model cost-per-token pair.
type ModelPrice struct {
	InputPerToken  float64
	OutputPerToken float64
}

// SpanStore is the subset of storage.Store the proxy needs to instrument
// requests, kept narrow so it can be faked in tests.
type SpanStore interface {
	CreateSpan(ctx context.Context, p storage.CreateSpanParams) (*models.Span, error)
	CompleteSpan(ctx context.Context, id uuid.UUID, output any, usage *storage.SpanUsage) (*models.Span, error)
	FailSpan(ctx context.Context, id uuid.UUID, errMsg string) (*models.Span, error)
}

// Proxy is an http.Handler that forwards to Upstream and instruments
// recognized LLM endpoints into spans against Store.
type Proxy struct {
	Upstream   *url.URL
	Store      SpanStore
	Prices     PriceTable
	Logger     *slog.Logger
	TraceIDFor func(*http.Request) uuid.UUID // resolves/creates the trace a span belongs to

	reverse *httputil.ReverseProxy
}

// New constructs a Proxy targeting upstream.
func New(upstream *url.URL, store SpanStore, prices PriceTable, logger *slog.Logger, traceIDFor func(*http.Request) uuid.UUID) *Proxy {
	p := &Proxy{Upstream: upstream, Store: store, Prices: prices, Logger: logger, TraceIDFor: traceIDFor}
	p.reverse = &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(upstream)
			r.Out.Host = upstream.Host
		},
		ErrorLog: nil,
	}
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !isRecognizedPath(r.URL.Path) {
		p.reverse.ServeHTTP(w, r)
		return
	}
	p.serveInstrumented(w, r)
}

func isRecognizedPath(path string) bool {
	for _, rp := range recognizedPaths {
		if path == rp || strings.HasSuffix(path, rp) {
			return true
		}
	}
	return false
}

// serveInstrumented implements spec.md §4.H's numbered contract: open span,
// tee the (possibly streaming) response, complete/fail on terminus.
func (p *Proxy) serveInstrumented(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, bodyCeiling))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadGateway)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	model, _ := extractModel(bodyBytes)
	provider := providerFromUpstream(p.Upstream)
	traceID := p.TraceIDFor(r)

	span, err := p.Store.CreateSpan(r.Context(), storage.CreateSpanParams{
		TraceID: traceID,
		Name:    r.URL.Path,
		Kind: models.SpanKind{
			Type:         models.SpanKindLLMCall,
			Model:        model,
			Provider:     &provider,
			InputPreview: truncate(string(bodyBytes), previewSize),
		},
		Input: json.RawMessage(bodyBytes),
	})
	if err != nil {
		http.Error(w, "failed to open span", http.StatusInternalServerError)
		return
	}

	rec := &teeingResponseWriter{ResponseWriter: w, accumulated: &bytes.Buffer{}, ceiling: bodyCeiling}
	p.reverse.ServeHTTP(rec, r)

	p.finish(r.Context(), span.ID, provider, model, rec)
}

// finish classifies the recorded response and completes/fails the span
// (spec.md §4.H steps 3-5).
func (p *Proxy) finish(ctx context.Context, spanID uuid.UUID, provider, model string, rec *teeingResponseWriter) {
	if ctx.Err() != nil {
		if _, err := p.Store.FailSpan(context.WithoutCancel(ctx), spanID, "client_disconnected"); err != nil && p.Logger != nil {
			p.Logger.Error("failed to fail span on client disconnect", "span_id", spanID, "error", err)
		}
		return
	}

	body := rec.accumulated.Bytes()
	if rec.statusCode >= 400 {
		excerpt := stringOrEmpty(truncate(string(body), previewSize))
		if _, err := p.Store.FailSpan(ctx, spanID, excerpt); err != nil && p.Logger != nil {
			p.Logger.Error("failed to fail span", "span_id", spanID, "error", err)
		}
		return
	}

	u := extractUsage(body)
	output := map[string]any{
		"preview": stringOrEmpty(truncate(string(body), previewSize)),
	}
	usage := &storage.SpanUsage{
		InputTokens:  &u.PromptTokens,
		OutputTokens: &u.CompletionTokens,
		Cost:         p.Prices.Cost(provider, model, u),
	}
	if _, err := p.Store.CompleteSpan(ctx, spanID, output, usage); err != nil && p.Logger != nil {
		p.Logger.Error("failed to complete span", "span_id", spanID, "error", err)
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, limit int) *string {
	if len(s) <= limit {
		return &s
	}
	out := s[:limit] + truncatedMarker
	return &out
}

func extractModel(body []byte) (string, bool) {
	var payload struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", false
	}
	return payload.Model, payload.Model != ""
}

// usage is the provider-agnostic projection of token counts (spec.md §4.H.3).
type usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

func extractUsage(body []byte) usage {
	var payload struct {
		Usage struct {
			PromptTokens     int64 `json:"prompt_tokens"`
			CompletionTokens int64 `json:"completion_tokens"`
		} `json:"usage"`
	}
	_ = json.Unmarshal(body, &payload)
	return usage{PromptTokens: payload.Usage.PromptTokens, CompletionTokens: payload.Usage.CompletionTokens}
}

// Cost computes the static-price-table cost for a (provider, model) pair
// and token usage; an entry absent from the table returns nil rather than
// zero, distinguishing "unpriced" from "free" (spec.md §9).
func (t PriceTable) Cost(provider, model string, u usage) *float64 {
	price, ok := t[provider+"/"+model]
	if !ok {
		return nil
	}
	cost := float64(u.PromptTokens)*price.InputPerToken + float64(u.CompletionTokens)*price.OutputPerToken
	return &cost
}

func providerFromUpstream(u *url.URL) string {
	host := u.Hostname()
	switch {
	case strings.Contains(host, "openai"):
		return "openai"
	case strings.Contains(host, "anthropic"):
		return "anthropic"
	case strings.Contains(host, "azure"):
		return "azure"
	default:
		return host
	}
}
