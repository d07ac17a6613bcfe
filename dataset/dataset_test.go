package dataset_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/dataset"
	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/storage/embedded"
)

func newTestService(t *testing.T) (*dataset.Service, storage.Store) {
	t.Helper()
	s, err := embedded.Open("file::memory:?cache=shared", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return dataset.New(s, eventbus.New(nil)), s
}

func TestExportSpan_LLMCallWithMessagesBecomesConversation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tr, err := store.CreateTrace(ctx, storage.CreateTraceParams{Name: "chat"})
	require.NoError(t, err)

	span, err := store.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID,
		Name:    "chat-completion",
		Kind:    models.SpanKind{Type: models.SpanKindLLMCall, Model: "gpt-4o"},
		Input:   map[string]any{"messages": []map[string]any{{"role": "user", "content": "hi"}}},
	})
	require.NoError(t, err)

	ds, err := store.CreateDataset(ctx, "chats", "")
	require.NoError(t, err)

	dp, err := svc.ExportSpan(ctx, ds.ID, span.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DatapointLLMConversation, dp.Kind)
	require.Len(t, dp.Messages, 1)
	assert.Equal(t, "hi", dp.Messages[0].Content)
}

func TestExportSpan_NonLLMBecomesGeneric(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tr, err := store.CreateTrace(ctx, storage.CreateTraceParams{Name: "fs"})
	require.NoError(t, err)
	hash := "deadbeef"
	span, err := store.CreateSpan(ctx, storage.CreateSpanParams{
		TraceID: tr.ID,
		Name:    "write-config",
		Kind:    models.SpanKind{Type: models.SpanKindFSWrite, Path: "/etc/app.conf", FileVersion: &hash},
	})
	require.NoError(t, err)

	ds, err := store.CreateDataset(ctx, "writes", "")
	require.NoError(t, err)

	dp, err := svc.ExportSpan(ctx, ds.ID, span.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DatapointGeneric, dp.Kind)
}

func TestQueueWorkflow_ClaimThenSubmit(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ds, err := store.CreateDataset(ctx, "reviews", "")
	require.NoError(t, err)
	dp, err := store.CreateDatapoint(ctx, &models.Datapoint{DatasetID: ds.ID, Kind: models.DatapointGeneric, Input: "x"})
	require.NoError(t, err)

	item, err := svc.EnqueueDatapoint(ctx, ds.ID, dp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueuePending, item.State)

	claimed, err := svc.ClaimQueueItem(ctx, item.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.QueueClaimed, claimed.State)

	_, err = svc.ClaimQueueItem(ctx, item.ID, "bob")
	assert.Error(t, err)

	done, err := svc.SubmitQueueItem(ctx, item.ID, map[string]any{"score": 1.0})
	require.NoError(t, err)
	assert.Equal(t, models.QueueCompleted, done.State)
}

func TestImport_JSONLCreatesGenericDatapoints(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ds, err := store.CreateDataset(ctx, "imported", "")
	require.NoError(t, err)

	body := strings.NewReader(`{"input":"q1","expectedOutput":"a1","tag":"seed"}` + "\n" +
		`{"input":"q2","expectedOutput":"a2"}` + "\n")

	dps, err := svc.Import(ctx, ds.ID, dataset.FormatJSONL, body)
	require.NoError(t, err)
	require.Len(t, dps, 2)
	assert.Equal(t, "q1", dps[0].Input)
	assert.Equal(t, "seed", dps[0].Metadata["tag"])
}

func TestImport_CSVAggregatesUnknownColumnsIntoMetadata(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	ds, err := store.CreateDataset(ctx, "csv-import", "")
	require.NoError(t, err)

	body := strings.NewReader("input,expectedOutput,annotator\nq1,a1,alice\n")
	dps, err := svc.Import(ctx, ds.ID, dataset.FormatCSV, body)
	require.NoError(t, err)
	require.Len(t, dps, 1)
	assert.Equal(t, "q1", dps[0].Input)
	assert.Equal(t, "alice", dps[0].Metadata["annotator"])
}
