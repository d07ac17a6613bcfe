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

// Package api wires entity operations (trace, span, file, analytics,
// event, dataset, queue) into REST/SSE routes on a single
// net/http.ServeMux, and composes the middleware chain around it.
package api

import (
	"net/http"

	"github.com/tracewayhq/traceway/middleware"
	"github.com/tracewayhq/traceway/middleware/logger"
	"github.com/tracewayhq/traceway/wiring"
)

// MakeHTTPHandler builds the top-level handler for the REST/SSE/websocket
// server: it registers every entity family's routes on one mux and wraps it
// in the middleware chain in the order recoverer → CORS → correlation ID →
// request logger → tenant-key extraction (spec.md §4.I).
func MakeHTTPHandler(params *wiring.AppParams) http.Handler {
	mux := http.NewServeMux()

	registerHealthCheck(mux)
	registerExportRoutes(mux, params.TraceController)
	registerTraceRoutes(mux, params.TraceController)
	registerSpanRoutes(mux, params.SpanController)
	registerFileRoutes(mux, params.FileController)
	registerAnalyticsRoutes(mux, params.AnalyticsController)
	registerEventRoutes(mux, params.EventController, params.WSBridge)
	registerDatasetRoutes(mux, params.DatasetController)
	registerQueueRoutes(mux, params.QueueController)

	handler := http.Handler(mux)
	handler = middleware.TenantKey()(handler)
	handler = logger.RequestLogger(params.Logger)(handler)
	handler = middleware.AddCorrelationID()(handler)
	handler = middleware.CORS(params.Config.CORSAllowedOrigin)(handler)
	handler = middleware.RecovererOnPanic()(handler)

	return handler
}
