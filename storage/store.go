package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/models"
)

// CreateSpanParams carries create_span's optional fields (spec.md §4.C). ID
// lets a caller pin the span's identifier before it is durable, so an
// fs_write's file version can reference the span that will own it; zero
// value means the backend generates one. Content carries the raw bytes of
// an fs_write span, triggering the file-version-registry write (spec.md
// §4.G) before the span itself is persisted.
type CreateSpanParams struct {
	ID       uuid.UUID
	TraceID  uuid.UUID
	ParentID *uuid.UUID
	Name     string
	Kind     models.SpanKind
	Input    any
	Content  []byte
}

// CreateTraceParams carries create_trace's optional fields.
type CreateTraceParams struct {
	ID   *uuid.UUID
	Name string
	Tags []string
}

// SpanUsage carries the token/cost figures a completing llm_call span
// applies to its Kind (spec.md §4.H.3-4). A nil field leaves the
// corresponding Kind column untouched; Cost is nil when no price entry
// exists for the model, distinguishing "unpriced" from "free" (spec.md §9).
type SpanUsage struct {
	InputTokens  *int64
	OutputTokens *int64
	Cost         *float64
}

// AnalyticsQuery is {filter, group_by, metrics} from spec.md §4.E.
type AnalyticsQuery struct {
	Filter  SpanFilter
	GroupBy []string
	Metrics []string
}

// AnalyticsResult is {groups, totals} from spec.md §4.E.
type AnalyticsResult struct {
	Groups []AnalyticsGroup       `json:"groups"`
	Totals map[string]float64     `json:"totals"`
}

// AnalyticsGroup is one bucket of a grouped analytics query.
type AnalyticsGroup struct {
	Key     map[string]string `json:"key"`
	Metrics map[string]float64 `json:"metrics"`
}

// Store is the single contract every backend must satisfy (spec.md §4.C).
// Every method is parameterized implicitly by the tenant key carried on ctx
// (see WithTenant); embedded mode tolerates an empty tenant key.
type Store interface {
	// Traces. CreateTrace is idempotent on a caller-supplied p.ID: a second
	// call with the same id returns the existing trace unchanged rather
	// than erroring (spec.md §4.C).
	CreateTrace(ctx context.Context, p CreateTraceParams) (*models.Trace, error)
	GetTrace(ctx context.Context, id uuid.UUID) (*models.TraceWithSpans, error)
	ListTraces(ctx context.Context, f TraceFilter) ([]*models.Trace, error)
	DeleteTrace(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) error

	// Spans
	CreateSpan(ctx context.Context, p CreateSpanParams) (*models.Span, error)
	GetSpan(ctx context.Context, id uuid.UUID) (*models.Span, error)
	ListSpans(ctx context.Context, f SpanFilter) ([]*models.Span, error)
	CompleteSpan(ctx context.Context, id uuid.UUID, output any, usage *SpanUsage) (*models.Span, error)
	FailSpan(ctx context.Context, id uuid.UUID, errMsg string) (*models.Span, error)
	DeleteSpan(ctx context.Context, id uuid.UUID) error

	// Files. RecordRead's spanID/traceID identify the reading span so the
	// read surfaces in GetFileTraces alongside writes (spec.md §4.G).
	RecordWrite(ctx context.Context, path string, content []byte, spanID *uuid.UUID, traceID *uuid.UUID) (*models.FileVersion, error)
	RecordRead(ctx context.Context, path string, spanID *uuid.UUID, traceID *uuid.UUID) (*models.FileVersion, error)
	ListFiles(ctx context.Context, prefix string) ([]*models.TrackedFile, error)
	GetFileVersions(ctx context.Context, path string) ([]*models.FileVersion, error)
	GetFileContent(ctx context.Context, hash string) ([]byte, error)
	GetFileTraces(ctx context.Context, path string) ([]models.FileTraceRef, error)

	// Analytics
	RunAnalytics(ctx context.Context, q AnalyticsQuery) (*AnalyticsResult, error)

	// Datasets
	CreateDataset(ctx context.Context, name, description string) (*models.Dataset, error)
	GetDataset(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	ListDatasets(ctx context.Context) ([]*models.Dataset, error)
	DeleteDataset(ctx context.Context, id uuid.UUID) error

	// Datapoints
	CreateDatapoint(ctx context.Context, dp *models.Datapoint) (*models.Datapoint, error)
	GetDatapoint(ctx context.Context, id uuid.UUID) (*models.Datapoint, error)
	ListDatapoints(ctx context.Context, datasetID uuid.UUID) ([]*models.Datapoint, error)

	// Queue
	EnqueueDatapoint(ctx context.Context, datasetID, datapointID uuid.UUID) (*models.QueueItem, error)
	GetQueueItem(ctx context.Context, id uuid.UUID) (*models.QueueItem, error)
	ListQueueItems(ctx context.Context, datasetID uuid.UUID, state *models.QueueState) ([]*models.QueueItem, error)
	ClaimQueueItem(ctx context.Context, id uuid.UUID, claimer string) (*models.QueueItem, error)
	SubmitQueueItem(ctx context.Context, id uuid.UUID, editedData map[string]any) (*models.QueueItem, error)

	// Stats
	Stats(ctx context.Context) (map[string]any, error)

	Close() error
}

type tenantKeyType struct{}

// WithTenant attaches the per-request organization identity the auth layer
// established (the only contract the core consumes from it — spec.md §1).
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKeyType{}, tenant)
}

// TenantFromContext returns the tenant key attached by WithTenant, or "" for
// embedded/single-tenant mode.
func TenantFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKeyType{}).(string); ok {
		return v
	}
	return ""
}
