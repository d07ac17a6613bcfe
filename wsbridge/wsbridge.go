// Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package wsbridge relays eventbus events over a browser WebSocket, for UIs
// that prefer a socket to an EventSource (spec.md §4.F). SSE remains the
// authoritative way to observe events; this bridge is a pure enrichment
// adapted from the teacher's websocket.Manager/Connection, turned from a
// client-dial gateway connection into a server-accept browser connection.
package wsbridge

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tracewayhq/traceway/eventbus"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
)

// Bridge upgrades HTTP connections to WebSockets and relays bus events to
// each connected peer as JSON text frames.
type Bridge struct {
	bus      *eventbus.Bus
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New constructs a Bridge over bus. checkOrigin, if non-nil, overrides the
// upgrader's default same-origin policy (left permissive otherwise, since
// the bridge carries no credentials of its own beyond the tenant header
// already enforced upstream by middleware).
func New(bus *eventbus.Bus, logger *slog.Logger, checkOrigin func(*http.Request) bool) *Bridge {
	b := &Bridge{bus: bus, logger: logger}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin,
	}
	if checkOrigin == nil {
		b.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
	return b
}

// ServeHTTP upgrades the request and streams bus events to the peer until
// it disconnects or the request context is canceled.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if b.logger != nil {
			b.logger.Warn("websocket upgrade failed", "error", err)
		}
		return
	}
	defer conn.Close()

	sub := b.bus.Subscribe()
	defer sub.Unsubscribe()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// A dedicated reader goroutine drains the connection so control frames
	// (pong, close) are processed; the browser client never sends data
	// frames this bridge needs to act on.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
