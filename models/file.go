package models

import (
	"time"

	"github.com/google/uuid"
)

// TrackedFile is the current state of a logical file path (spec.md §3).
type TrackedFile struct {
	Path         string    `json:"path"`
	CurrentHash  string    `json:"currentHash"`
	VersionCount int       `json:"versionCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	TenantKey    string    `json:"-"`
}

// FileVersion is an immutable content snapshot (spec.md §3).
type FileVersion struct {
	Hash             string     `json:"hash"`
	Path             string     `json:"path"`
	Size             int64      `json:"size"`
	CreatedAt        time.Time  `json:"createdAt"`
	CreatedBySpanID  *uuid.UUID `json:"createdBySpanId,omitempty"`
	CreatedByTraceID *uuid.UUID `json:"createdByTraceId,omitempty"`
	TenantKey        string     `json:"-"`
}

// FileTraceRef is one row of get_file_traces(path): a span that read or
// wrote the path, with its trace id and timestamp (spec.md §4.G).
type FileTraceRef struct {
	SpanID    uuid.UUID `json:"spanId"`
	TraceID   uuid.UUID `json:"traceId"`
	Operation string    `json:"operation"` // "read" | "write"
	At        time.Time `json:"at"`
}
