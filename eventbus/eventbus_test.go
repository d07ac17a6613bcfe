package eventbus_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/eventbus"
)

func TestPublish_DeliversToSubscriber(t *testing.T) {
	b := eventbus.New(nil)
	sub := b.Subscribe()
	defer sub.Unsubscribe()

	b.Publish(eventbus.Event{Type: eventbus.EventTraceCreated, ID: uuid.New()})

	select {
	case evt := <-sub.Events():
		assert.Equal(t, eventbus.EventTraceCreated, evt.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublish_FanOutToMultipleSubscribers(t *testing.T) {
	b := eventbus.New(nil)
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	defer sub1.Unsubscribe()
	defer sub2.Unsubscribe()

	b.Publish(eventbus.Event{Type: eventbus.EventCleared})

	for _, s := range []*eventbus.Subscription{sub1, sub2} {
		select {
		case evt := <-s.Events():
			assert.Equal(t, eventbus.EventCleared, evt.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublish_DropsOldestAndMarksLagged(t *testing.T) {
	b := eventbus.New(nil, eventbus.WithBufferSize(2))
	sub := b.Subscribe()
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		b.Publish(eventbus.Event{Type: eventbus.EventSpanCreated})
	}

	require.True(t, sub.Lagged())
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	b := eventbus.New(nil)
	sub := b.Subscribe()
	sub.Unsubscribe()

	_, ok := <-sub.Events()
	assert.False(t, ok)
}
