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

package api

import (
	"net/http"

	"github.com/tracewayhq/traceway/controllers"
)

// registerQueueRoutes registers the annotation-queue API routes
// (spec.md §3, §4.J).
func registerQueueRoutes(mux *http.ServeMux, ctrl controllers.QueueController) {
	mux.HandleFunc("POST /api/queue", ctrl.Enqueue)
	mux.HandleFunc("GET /api/queue", ctrl.ListQueueItems)
	mux.HandleFunc("GET /api/queue/{id}", ctrl.GetQueueItem)
	mux.HandleFunc("POST /api/queue/{id}/claim", ctrl.Claim)
	mux.HandleFunc("POST /api/queue/{id}/submit", ctrl.Submit)
}
