package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/storage/embedded"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := embedded.Open("file::memory:?cache=shared", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestTraceService_CreatePublishesEvent(t *testing.T) {
	store := newTestStore(t)
	bus := eventbus.New(nil)
	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	svc := services.NewTraceService(slog.Default(), store, bus)
	tr, err := svc.CreateTrace(context.Background(), storage.CreateTraceParams{Name: "checkout"})
	require.NoError(t, err)

	evt := <-sub.Events()
	assert.Equal(t, eventbus.EventTraceCreated, evt.Type)
	assert.Equal(t, tr.ID, evt.ID)
}

func TestTraceService_DeletePublishesEvent(t *testing.T) {
	store := newTestStore(t)
	bus := eventbus.New(nil)
	svc := services.NewTraceService(slog.Default(), store, bus)
	ctx := context.Background()

	tr, err := svc.CreateTrace(ctx, storage.CreateTraceParams{Name: "to-delete"})
	require.NoError(t, err)

	sub := bus.Subscribe()
	defer sub.Unsubscribe()

	require.NoError(t, svc.DeleteTrace(ctx, tr.ID))
	evt := <-sub.Events()
	assert.Equal(t, eventbus.EventTraceDeleted, evt.Type)
	assert.Equal(t, tr.ID, evt.ID)
}
