// Package models defines the Traceway entity model: Trace, Span, SpanKind,
// Status, TrackedFile, FileVersion, Dataset, Datapoint and QueueItem
// (spec.md §3), plus their JSON wire shapes.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SpanKindType is the discriminant for SpanKind's tagged-variant cases.
type SpanKindType string

const (
	SpanKindFSRead  SpanKindType = "fs_read"
	SpanKindFSWrite SpanKindType = "fs_write"
	SpanKindLLMCall SpanKindType = "llm_call"
	SpanKindCustom  SpanKindType = "custom"
)

// SpanKind is the tagged variant from spec.md §3. Exactly one of the
// type-specific payloads is populated, matching SpanKindType.
type SpanKind struct {
	Type SpanKindType `json:"type"`

	// fs_read / fs_write
	Path         string  `json:"path,omitempty"`
	FileVersion  *string `json:"fileVersion,omitempty"`
	BytesRead    *int64  `json:"bytesRead,omitempty"`
	BytesWritten *int64  `json:"bytesWritten,omitempty"`

	// llm_call
	Model         string   `json:"model,omitempty"`
	Provider      *string  `json:"provider,omitempty"`
	InputTokens   *int64   `json:"inputTokens,omitempty"`
	OutputTokens  *int64   `json:"outputTokens,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	InputPreview  *string  `json:"inputPreview,omitempty"`
	OutputPreview *string  `json:"outputPreview,omitempty"`

	// custom
	Subtype    string         `json:"subtype,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Validate checks that the populated fields match the declared type and
// enforces the non-negative/required invariants from spec.md §3.
func (k SpanKind) Validate() error {
	switch k.Type {
	case SpanKindFSRead:
		if k.Path == "" {
			return fmt.Errorf("fs_read requires a path")
		}
		if k.BytesRead != nil && *k.BytesRead < 0 {
			return fmt.Errorf("bytesRead must be non-negative")
		}
	case SpanKindFSWrite:
		if k.Path == "" {
			return fmt.Errorf("fs_write requires a path")
		}
		if k.FileVersion == nil || *k.FileVersion == "" {
			return fmt.Errorf("fs_write requires a file version hash")
		}
		if k.BytesWritten != nil && *k.BytesWritten < 0 {
			return fmt.Errorf("bytesWritten must be non-negative")
		}
	case SpanKindLLMCall:
		if k.Model == "" {
			return fmt.Errorf("llm_call requires a model")
		}
	case SpanKindCustom:
		if k.Subtype == "" {
			return fmt.Errorf("custom requires a subtype")
		}
	default:
		return fmt.Errorf("unknown span kind %q", k.Type)
	}
	return nil
}

// LegacyMetadata projects SpanKind onto the flat map shape older clients
// expect (spec.md §9 Open Questions). It is a read-only compatibility view
// derived from SpanKind, never the source of truth, and is nil when the
// kind has no natural flattening.
func (k SpanKind) LegacyMetadata() map[string]any {
	switch k.Type {
	case SpanKindCustom:
		if len(k.Attributes) == 0 {
			return nil
		}
		out := make(map[string]any, len(k.Attributes)+1)
		out["subtype"] = k.Subtype
		for key, v := range k.Attributes {
			out[key] = v
		}
		return out
	case SpanKindLLMCall:
		out := map[string]any{"model": k.Model}
		if k.Provider != nil {
			out["provider"] = *k.Provider
		}
		if k.InputTokens != nil {
			out["input_tokens"] = *k.InputTokens
		}
		if k.OutputTokens != nil {
			out["output_tokens"] = *k.OutputTokens
		}
		if k.Cost != nil {
			out["cost"] = *k.Cost
		}
		return out
	default:
		return nil
	}
}

// StatusPhase is the discriminant for Status's tagged-variant cases.
type StatusPhase string

const (
	StatusRunning   StatusPhase = "running"
	StatusCompleted StatusPhase = "completed"
	StatusFailed    StatusPhase = "failed"
)

// Status is the tagged variant from spec.md §3.
type Status struct {
	Phase     StatusPhase `json:"phase"`
	StartedAt time.Time   `json:"startedAt"`
	EndedAt   *time.Time  `json:"endedAt,omitempty"`
	Error     *string     `json:"error,omitempty"`
}

// IsTerminal reports whether the span can no longer transition.
func (s Status) IsTerminal() bool {
	return s.Phase == StatusCompleted || s.Phase == StatusFailed
}

// Span is a single operation within a trace (spec.md §3).
type Span struct {
	ID        uuid.UUID      `json:"id"`
	TraceID   uuid.UUID      `json:"traceId"`
	ParentID  *uuid.UUID     `json:"parentId,omitempty"`
	Name      string         `json:"name"`
	Kind      SpanKind       `json:"kind"`
	Input     any            `json:"input,omitempty"`
	Output    any            `json:"output,omitempty"`
	Status    Status         `json:"status"`
	TenantKey string         `json:"-"`
	Metadata  map[string]any `json:"legacyMetadata,omitempty"`
}

// spanWire is the JSON encoding helper that keeps LegacyMetadata in sync
// with Kind on every marshal, per spec.md §9.
type spanWire Span

// MarshalJSON projects LegacyMetadata from Kind before encoding.
func (s Span) MarshalJSON() ([]byte, error) {
	w := spanWire(s)
	w.Metadata = s.Kind.LegacyMetadata()
	return json.Marshal(w)
}
