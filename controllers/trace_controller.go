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

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/middleware/logger"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/tracewayerr"
	"github.com/tracewayhq/traceway/utils"
)

// TraceController defines the interface for trace HTTP handlers.
type TraceController interface {
	CreateTrace(w http.ResponseWriter, r *http.Request)
	ListTraces(w http.ResponseWriter, r *http.Request)
	GetTrace(w http.ResponseWriter, r *http.Request)
	DeleteTrace(w http.ResponseWriter, r *http.Request)
	ClearAll(w http.ResponseWriter, r *http.Request)
	BulkExport(w http.ResponseWriter, r *http.Request)
}

type traceController struct {
	traces services.TraceService
}

// NewTraceController creates a new trace controller.
func NewTraceController(traces services.TraceService) TraceController {
	return &traceController{traces: traces}
}

type createTraceRequest struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

// CreateTrace handles POST /traces.
func (c *traceController) CreateTrace(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	var req createTraceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	tr, err := c.traces.CreateTrace(r.Context(), storage.CreateTraceParams{Name: req.Name, Tags: req.Tags})
	if err != nil {
		log.Error("failed to create trace", "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusCreated, tr)
}

// ListTraces handles GET /traces.
func (c *traceController) ListTraces(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	var f storage.TraceFilter
	if q := r.URL.Query().Get("name"); q != "" {
		f.NameContains = &q
	}

	traces, err := c.traces.ListTraces(r.Context(), f)
	if err != nil {
		log.Error("failed to list traces", "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, traces)
}

// GetTrace handles GET /traces/{id}.
func (c *traceController) GetTrace(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid trace id")
		return
	}

	tr, err := c.traces.GetTrace(r.Context(), id)
	if err != nil {
		if tracewayerr.ClassifyOf(err) != tracewayerr.KindNotFound {
			log.Error("failed to get trace", "id", id, "error", err)
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, tr)
}

// DeleteTrace handles DELETE /traces/{id}.
func (c *traceController) DeleteTrace(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid trace id")
		return
	}

	if err := c.traces.DeleteTrace(r.Context(), id); err != nil {
		if tracewayerr.ClassifyOf(err) != tracewayerr.KindNotFound {
			log.Error("failed to delete trace", "id", id, "error", err)
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse[any](w, http.StatusNoContent, nil)
}

// ClearAll handles DELETE /traces (tenant-scoped clear_all).
func (c *traceController) ClearAll(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	if err := c.traces.ClearAll(r.Context()); err != nil {
		log.Error("failed to clear all data", "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse[any](w, http.StatusNoContent, nil)
}

// BulkExport handles GET /export/json?trace_id=..., dumping one trace (with
// its spans) or every trace when trace_id is absent.
func (c *traceController) BulkExport(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())
	ctx := r.Context()

	if raw := r.URL.Query().Get("trace_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid trace_id")
			return
		}
		tr, err := c.traces.GetTrace(ctx, id)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteSuccessResponse(w, http.StatusOK, []*models.TraceWithSpans{tr})
		return
	}

	traces, err := c.traces.ListTraces(ctx, storage.TraceFilter{})
	if err != nil {
		log.Error("failed to list traces for bulk export", "error", err)
		utils.WriteError(w, err)
		return
	}

	bundles := make([]*models.TraceWithSpans, 0, len(traces))
	for _, t := range traces {
		tr, err := c.traces.GetTrace(ctx, t.ID)
		if err != nil {
			log.Error("failed to load trace for bulk export", "id", t.ID, "error", err)
			utils.WriteError(w, err)
			return
		}
		bundles = append(bundles, tr)
	}
	utils.WriteSuccessResponse(w, http.StatusOK, bundles)
}
