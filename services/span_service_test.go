package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/fileregistry"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/storage"
)

func TestSpanService_CompleteLifecyclePublishesEvents(t *testing.T) {
	store := newTestStore(t)
	bus := eventbus.New(nil)
	ctx := context.Background()

	traceSvc := services.NewTraceService(slog.Default(), store, bus)
	tr, err := traceSvc.CreateTrace(ctx, storage.CreateTraceParams{Name: "pipeline"})
	require.NoError(t, err)

	files := fileregistry.New(store, bus)
	spanSvc := services.NewSpanService(slog.Default(), store, bus, files)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	span, err := spanSvc.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID,
		Name:    "load-model",
		Kind:    models.SpanKind{Type: models.SpanKindCustom, Subtype: "setup"},
	})
	require.NoError(t, err)
	assert.Equal(t, eventbus.EventSpanCreated, (<-sub.Events()).Type)

	_, err = spanSvc.CompleteSpan(ctx, span.ID, map[string]any{"ok": true}, nil)
	require.NoError(t, err)
	assert.Equal(t, eventbus.EventSpanCompleted, (<-sub.Events()).Type)
}

func TestSpanService_FailPublishesFailedEvent(t *testing.T) {
	store := newTestStore(t)
	bus := eventbus.New(nil)
	ctx := context.Background()

	traceSvc := services.NewTraceService(slog.Default(), store, bus)
	tr, err := traceSvc.CreateTrace(ctx, storage.CreateTraceParams{Name: "pipeline"})
	require.NoError(t, err)

	files := fileregistry.New(store, bus)
	spanSvc := services.NewSpanService(slog.Default(), store, bus, files)
	span, err := spanSvc.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID,
		Name:    "risky-call",
		Kind:    models.SpanKind{Type: models.SpanKindCustom, Subtype: "risky"},
	})
	require.NoError(t, err)

	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	_, err = spanSvc.FailSpan(ctx, span.ID, "boom")
	require.NoError(t, err)
	assert.Equal(t, eventbus.EventSpanFailed, (<-sub.Events()).Type)
}

// TestSpanService_FSWriteSpanRegistersFileVersion exercises spec.md §4.G's
// fs_write contract end to end through the span lifecycle, not a direct
// store call: creating a span whose kind is fs_write with content bytes
// populates Kind.FileVersion/BytesWritten and registers a version referencing
// the span's own id.
func TestSpanService_FSWriteSpanRegistersFileVersion(t *testing.T) {
	store := newTestStore(t)
	bus := eventbus.New(nil)
	ctx := context.Background()

	traceSvc := services.NewTraceService(slog.Default(), store, bus)
	tr, err := traceSvc.CreateTrace(ctx, storage.CreateTraceParams{Name: "pipeline"})
	require.NoError(t, err)

	files := fileregistry.New(store, bus)
	spanSvc := services.NewSpanService(slog.Default(), store, bus, files)

	span, err := spanSvc.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID,
		Name:    "write-config",
		Kind:    models.SpanKind{Type: models.SpanKindFSWrite, Path: "/tmp/config.json"},
		Content: []byte(`{"debug":true}`),
	})
	require.NoError(t, err)
	require.NotNil(t, span.Kind.FileVersion)
	require.NotNil(t, span.Kind.BytesWritten)
	assert.Equal(t, int64(len(`{"debug":true}`)), *span.Kind.BytesWritten)

	refs, err := store.GetFileTraces(ctx, "/tmp/config.json")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, span.ID, refs[0].SpanID)
	assert.Equal(t, "write", refs[0].Operation)
}

// TestSpanService_FSReadSpanSurfacesInFileTraces exercises spec.md §4.G's
// fs_read contract: a span that reads a previously-written path appears in
// GetFileTraces alongside the write, which a bare write-only registry write
// would not surface.
func TestSpanService_FSReadSpanSurfacesInFileTraces(t *testing.T) {
	store := newTestStore(t)
	bus := eventbus.New(nil)
	ctx := context.Background()

	traceSvc := services.NewTraceService(slog.Default(), store, bus)
	tr, err := traceSvc.CreateTrace(ctx, storage.CreateTraceParams{Name: "pipeline"})
	require.NoError(t, err)

	files := fileregistry.New(store, bus)
	spanSvc := services.NewSpanService(slog.Default(), store, bus, files)

	_, err = spanSvc.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID, Name: "write-config",
		Kind: models.SpanKind{Type: models.SpanKindFSWrite, Path: "/tmp/config.json"},
		Content: []byte("v1"),
	})
	require.NoError(t, err)

	readSpan, err := spanSvc.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID, Name: "read-config",
		Kind: models.SpanKind{Type: models.SpanKindFSRead, Path: "/tmp/config.json"},
	})
	require.NoError(t, err)

	refs, err := store.GetFileTraces(ctx, "/tmp/config.json")
	require.NoError(t, err)
	require.Len(t, refs, 2)

	ops := map[uuid.UUID]string{}
	for _, r := range refs {
		ops[r.SpanID] = r.Operation
	}
	assert.Equal(t, "read", ops[readSpan.ID])
}
