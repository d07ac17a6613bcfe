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

// registerSpanRoutes registers the span API routes.
func registerSpanRoutes(mux *http.ServeMux, ctrl controllers.SpanController) {
	mux.HandleFunc("POST /api/spans", ctrl.CreateSpan)
	mux.HandleFunc("GET /api/spans", ctrl.ListSpans)
	mux.HandleFunc("GET /api/spans/{id}", ctrl.GetSpan)
	mux.HandleFunc("POST /api/spans/{id}/complete", ctrl.CompleteSpan)
	mux.HandleFunc("POST /api/spans/{id}/fail", ctrl.FailSpan)
	mux.HandleFunc("DELETE /api/spans/{id}", ctrl.DeleteSpan)
}
