package models

import (
	"time"

	"github.com/google/uuid"
)

// Trace is the logical unit of work owning a forest of spans (spec.md §3).
type Trace struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	TenantKey string     `json:"-"`
}

// TraceWithSpans is the response shape for GET /api/traces/{id}.
type TraceWithSpans struct {
	Trace
	Count int    `json:"count"`
	Spans []Span `json:"spans"`
}
