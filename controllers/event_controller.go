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

package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/middleware/logger"
)

// EventController streams bus events over SSE (spec.md §4.F/§4.I). The
// websocket bridge in wsbridge relays the same events; this handler is the
// authoritative one — SSE reconnects restart from the next event and
// clients must tolerate gaps, resolved via the resync/cleared event.
type EventController interface {
	StreamEvents(w http.ResponseWriter, r *http.Request)
}

type eventController struct {
	bus *eventbus.Bus
}

// NewEventController creates a new event-stream controller.
func NewEventController(bus *eventbus.Bus) EventController {
	return &eventController{bus: bus}
}

// StreamEvents handles GET /events, writing one `data: <json>\n\n` line per
// bus event until the client disconnects.
func (c *eventController) StreamEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := c.bus.Subscribe()
	defer sub.Unsubscribe()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				log.Error("failed to marshal event for SSE", "error", err)
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
