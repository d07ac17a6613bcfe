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

// registerTraceRoutes registers the trace API routes.
func registerTraceRoutes(mux *http.ServeMux, ctrl controllers.TraceController) {
	mux.HandleFunc("POST /api/traces", ctrl.CreateTrace)
	mux.HandleFunc("GET /api/traces", ctrl.ListTraces)
	mux.HandleFunc("DELETE /api/traces", ctrl.ClearAll)
	mux.HandleFunc("GET /api/traces/{id}", ctrl.GetTrace)
	mux.HandleFunc("DELETE /api/traces/{id}", ctrl.DeleteTrace)
}
