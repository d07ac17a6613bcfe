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

// registerFileRoutes registers the file-version-registry API routes. Tracked
// file paths contain slashes, so each route needs a trailing {path...}
// wildcard; since net/http.ServeMux requires that wildcard to be the final
// pattern element, the versions/traces suffixes are carried as a prefix
// segment instead of a suffix.
func registerFileRoutes(mux *http.ServeMux, ctrl controllers.FileController) {
	mux.HandleFunc("GET /api/files", ctrl.ListFiles)
	mux.HandleFunc("GET /api/files/versions/{path...}", ctrl.GetFileVersions)
	mux.HandleFunc("GET /api/files/traces/{path...}", ctrl.GetFileTraces)
	mux.HandleFunc("GET /api/files/content/{path...}", ctrl.GetFileContent)
}
