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
	"net/http"

	"github.com/tracewayhq/traceway/middleware/logger"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/tracewayerr"
	"github.com/tracewayhq/traceway/utils"
)

// FileController defines the interface for file-registry HTTP handlers.
type FileController interface {
	ListFiles(w http.ResponseWriter, r *http.Request)
	GetFileContent(w http.ResponseWriter, r *http.Request)
	GetFileVersions(w http.ResponseWriter, r *http.Request)
	GetFileTraces(w http.ResponseWriter, r *http.Request)
}

type fileController struct {
	files services.FileService
}

// NewFileController creates a new file controller.
func NewFileController(files services.FileService) FileController {
	return &fileController{files: files}
}

// ListFiles handles GET /files?prefix=.
func (c *fileController) ListFiles(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	files, err := c.files.ListFiles(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		log.Error("failed to list files", "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, files)
}

// GetFileContent handles GET /files/content/{path...}, returning the raw bytes of
// the most recent version of path.
func (c *fileController) GetFileContent(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())
	path := r.PathValue("path")

	versions, err := c.files.GetFileVersions(r.Context(), path)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if len(versions) == 0 {
		utils.WriteError(w, tracewayerr.ErrFileNotFound)
		return
	}

	content, err := c.files.GetFileContent(r.Context(), versions[0].Hash)
	if err != nil {
		log.Error("failed to read file content", "path", path, "hash", versions[0].Hash, "error", err)
		utils.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// GetFileVersions handles GET /files/versions/{path...}.
func (c *fileController) GetFileVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := c.files.GetFileVersions(r.Context(), r.PathValue("path"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, versions)
}

// GetFileTraces handles GET /files/traces/{path...}.
func (c *fileController) GetFileTraces(w http.ResponseWriter, r *http.Request) {
	refs, err := c.files.GetFileTraces(r.Context(), r.PathValue("path"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, refs)
}
