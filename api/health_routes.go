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
	"github.com/tracewayhq/traceway/utils"
)

// registerHealthCheck registers the liveness endpoint.
func registerHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccessResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// registerExportRoutes registers the bulk export endpoint.
func registerExportRoutes(mux *http.ServeMux, ctrl controllers.TraceController) {
	mux.HandleFunc("GET /api/export/json", ctrl.BulkExport)
}
