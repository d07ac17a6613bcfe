package embedded_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/storage/embedded"
	"github.com/tracewayhq/traceway/tracewayerr"
)

func newTestStore(t *testing.T) *embedded.Store {
	t.Helper()
	s, err := embedded.Open("file::memory:?cache=shared", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetTrace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tr, err := s.CreateTrace(ctx, storage.CreateTraceParams{Name: "checkout-flow", Tags: []string{"prod"}})
	require.NoError(t, err)
	assert.Equal(t, "checkout-flow", tr.Name)

	got, err := s.GetTrace(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, []string{"prod"}, got.Tags)
}

func TestGetTrace_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTrace(context.Background(), uuid.New())
	assert.ErrorIs(t, err, tracewayerr.ErrTraceNotFound)
}

func TestCreateTrace_IdempotentOnProvidedID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := uuid.New()

	first, err := s.CreateTrace(ctx, storage.CreateTraceParams{ID: &id, Name: "checkout-flow"})
	require.NoError(t, err)

	second, err := s.CreateTrace(ctx, storage.CreateTraceParams{ID: &id, Name: "different-name"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "checkout-flow", second.Name)
}

func TestCreateSpan_ImplicitlyCreatesTrace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	traceID := uuid.New()

	span, err := s.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: traceID, Name: "x", Kind: models.SpanKind{Type: models.SpanKindCustom, Subtype: "noop"},
	})
	require.NoError(t, err)

	tr, err := s.GetTrace(ctx, traceID)
	require.NoError(t, err)
	assert.Equal(t, "", tr.Name)
	require.Len(t, tr.Spans, 1)
	assert.Equal(t, span.ID, tr.Spans[0].ID)
}

func TestCreateSpan_RequiresValidKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr, err := s.CreateTrace(ctx, storage.CreateTraceParams{Name: "t"})
	require.NoError(t, err)

	_, err = s.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID, Name: "llm", Kind: models.SpanKind{Type: models.SpanKindLLMCall},
	})
	assert.Error(t, err)
}

func TestSpanLifecycle_CompleteThenFailIsRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr, err := s.CreateTrace(ctx, storage.CreateTraceParams{Name: "t"})
	require.NoError(t, err)

	model := "gpt-4o"
	span, err := s.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID, Name: "call", Kind: models.SpanKind{Type: models.SpanKindLLMCall, Model: model},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRunning, span.Status.Phase)

	completed, err := s.CompleteSpan(ctx, span.ID, map[string]any{"ok": true}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status.Phase)

	_, err = s.FailSpan(ctx, span.ID, "too late")
	assert.ErrorIs(t, err, tracewayerr.ErrSpanTerminal)
}

func TestCompleteSpan_MergesUsageIntoKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr, err := s.CreateTrace(ctx, storage.CreateTraceParams{Name: "t"})
	require.NoError(t, err)

	span, err := s.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID, Name: "call", Kind: models.SpanKind{Type: models.SpanKindLLMCall, Model: "gpt-4o"},
	})
	require.NoError(t, err)

	inTok, outTok, cost := int64(10), int64(5), 0.002
	completed, err := s.CompleteSpan(ctx, span.ID, map[string]any{"ok": true}, &storage.SpanUsage{
		InputTokens: &inTok, OutputTokens: &outTok, Cost: &cost,
	})
	require.NoError(t, err)
	require.NotNil(t, completed.Kind.InputTokens)
	require.NotNil(t, completed.Kind.OutputTokens)
	require.NotNil(t, completed.Kind.Cost)
	assert.Equal(t, inTok, *completed.Kind.InputTokens)
	assert.Equal(t, outTok, *completed.Kind.OutputTokens)
	assert.Equal(t, cost, *completed.Kind.Cost)
}

func TestDeleteTrace_CascadesSpans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr, err := s.CreateTrace(ctx, storage.CreateTraceParams{Name: "t"})
	require.NoError(t, err)
	_, err = s.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID, Name: "x", Kind: models.SpanKind{Type: models.SpanKindCustom, Subtype: "noop"},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteTrace(ctx, tr.ID))

	_, err = s.GetTrace(ctx, tr.ID)
	assert.ErrorIs(t, err, tracewayerr.ErrTraceNotFound)
}

func TestFileRegistry_WriteThenReadTracksCurrentHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	spanID, traceID := uuid.New(), uuid.New()

	fv, err := s.RecordWrite(ctx, "/tmp/a.txt", []byte("hello"), &spanID, &traceID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), fv.Size)

	readSpanID := uuid.New()
	read, err := s.RecordRead(ctx, "/tmp/a.txt", &readSpanID, &traceID)
	require.NoError(t, err)
	require.NotNil(t, read)
	assert.Equal(t, fv.Hash, read.Hash)

	versions, err := s.GetFileVersions(ctx, "/tmp/a.txt")
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestFileRegistry_ReadUnknownPathReturnsNil(t *testing.T) {
	s := newTestStore(t)
	spanID, traceID := uuid.New(), uuid.New()
	fv, err := s.RecordRead(context.Background(), "/never/written", &spanID, &traceID)
	require.NoError(t, err)
	assert.Nil(t, fv)
}

func TestGetFileTraces_SurfacesBothReadsAndWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	writeSpanID, readSpanID, traceID := uuid.New(), uuid.New(), uuid.New()

	_, err := s.RecordWrite(ctx, "/tmp/b.txt", []byte("content"), &writeSpanID, &traceID)
	require.NoError(t, err)
	_, err = s.RecordRead(ctx, "/tmp/b.txt", &readSpanID, &traceID)
	require.NoError(t, err)

	refs, err := s.GetFileTraces(ctx, "/tmp/b.txt")
	require.NoError(t, err)
	require.Len(t, refs, 2)

	ops := map[string]bool{}
	for _, r := range refs {
		ops[r.Operation] = true
	}
	assert.True(t, ops["read"])
	assert.True(t, ops["write"])
}

func TestDataset_DuplicateNameRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateDataset(ctx, "evals", "")
	require.NoError(t, err)
	_, err = s.CreateDataset(ctx, "evals", "")
	assert.ErrorIs(t, err, tracewayerr.ErrDatasetNameTaken)
}

func TestQueue_ClaimThenSubmit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ds, err := s.CreateDataset(ctx, "review-queue", "")
	require.NoError(t, err)
	dp, err := s.CreateDatapoint(ctx, &models.Datapoint{DatasetID: ds.ID, Kind: models.DatapointGeneric, Source: models.SourceManual})
	require.NoError(t, err)
	item, err := s.EnqueueDatapoint(ctx, ds.ID, dp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueuePending, item.State)

	claimed, err := s.ClaimQueueItem(ctx, item.ID, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, models.QueueClaimed, claimed.State)

	_, err = s.ClaimQueueItem(ctx, item.ID, "reviewer-2")
	assert.ErrorIs(t, err, tracewayerr.ErrQueueAlreadyClaimed)

	submitted, err := s.SubmitQueueItem(ctx, item.ID, map[string]any{"label": "good"})
	require.NoError(t, err)
	assert.Equal(t, models.QueueCompleted, submitted.State)
}
