package wsbridge_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/wsbridge"
)

func TestBridge_RelaysPublishedEvents(t *testing.T) {
	bus := eventbus.New(nil)
	bridge := wsbridge.New(bus, nil, nil)

	server := httptest.NewServer(bridge)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server goroutine time to register its subscription before
	// publishing, since Subscribe happens inside ServeHTTP after the upgrade.
	time.Sleep(50 * time.Millisecond)

	bus.Publish(eventbus.Event{Type: eventbus.EventTraceCreated})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got eventbus.Event
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, eventbus.EventTraceCreated, got.Type)
}
