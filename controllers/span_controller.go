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

	"github.com/tracewayhq/traceway/filterdsl"
	"github.com/tracewayhq/traceway/ids"
	"github.com/tracewayhq/traceway/middleware/logger"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/tracewayerr"
	"github.com/tracewayhq/traceway/utils"
)

// SpanController defines the interface for span HTTP handlers.
type SpanController interface {
	CreateSpan(w http.ResponseWriter, r *http.Request)
	ListSpans(w http.ResponseWriter, r *http.Request)
	GetSpan(w http.ResponseWriter, r *http.Request)
	CompleteSpan(w http.ResponseWriter, r *http.Request)
	FailSpan(w http.ResponseWriter, r *http.Request)
	DeleteSpan(w http.ResponseWriter, r *http.Request)
}

type spanController struct {
	spans services.SpanService
	clock ids.Clock
}

// NewSpanController creates a new span controller.
func NewSpanController(spans services.SpanService, clock ids.Clock) SpanController {
	if clock == nil {
		clock = ids.SystemClock{}
	}
	return &spanController{spans: spans, clock: clock}
}

type createSpanRequest struct {
	TraceID  uuid.UUID       `json:"traceId"`
	ParentID *uuid.UUID      `json:"parentId,omitempty"`
	Name     string          `json:"name"`
	Kind     models.SpanKind `json:"kind"`
	Input    any             `json:"input,omitempty"`
	// Content carries the raw bytes of an fs_write span (base64 on the
	// wire), triggering the file-version-registry write (spec.md §4.G).
	Content []byte `json:"content,omitempty"`
}

// CreateSpan handles POST /spans.
func (c *spanController) CreateSpan(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	var req createSpanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	span, err := c.spans.CreateSpan(r.Context(), storage.CreateSpanParams{
		TraceID: req.TraceID, ParentID: req.ParentID, Name: req.Name, Kind: req.Kind, Input: req.Input,
		Content: req.Content,
	})
	if err != nil {
		if tracewayerr.ClassifyOf(err) == tracewayerr.KindInternal {
			log.Error("failed to create span", "trace_id", req.TraceID, "error", err)
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusCreated, span)
}

// ListSpans handles GET /spans?q=<filter dsl>.
func (c *spanController) ListSpans(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	f, err := filterdsl.Parse(r.URL.Query().Get("q"), c.clock)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	spans, err := c.spans.ListSpans(r.Context(), f)
	if err != nil {
		log.Error("failed to list spans", "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, spans)
}

// GetSpan handles GET /spans/{id}.
func (c *spanController) GetSpan(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid span id")
		return
	}
	span, err := c.spans.GetSpan(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, span)
}

type completeSpanRequest struct {
	Output any `json:"output"`
	// InputTokens/OutputTokens/Cost report an llm_call span's usage
	// directly, the same figures the proxy extracts from upstream
	// responses (spec.md §4.H).
	InputTokens  *int64   `json:"inputTokens,omitempty"`
	OutputTokens *int64   `json:"outputTokens,omitempty"`
	Cost         *float64 `json:"cost,omitempty"`
}

// CompleteSpan handles POST /spans/{id}/complete.
func (c *spanController) CompleteSpan(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid span id")
		return
	}
	var req completeSpanRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	var usage *storage.SpanUsage
	if req.InputTokens != nil || req.OutputTokens != nil || req.Cost != nil {
		usage = &storage.SpanUsage{InputTokens: req.InputTokens, OutputTokens: req.OutputTokens, Cost: req.Cost}
	}

	span, err := c.spans.CompleteSpan(r.Context(), id, req.Output, usage)
	if err != nil {
		if tracewayerr.ClassifyOf(err) == tracewayerr.KindInternal {
			log.Error("failed to complete span", "id", id, "error", err)
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, span)
}

type failSpanRequest struct {
	Error string `json:"error"`
}

// FailSpan handles POST /spans/{id}/fail.
func (c *spanController) FailSpan(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid span id")
		return
	}
	var req failSpanRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	span, err := c.spans.FailSpan(r.Context(), id, req.Error)
	if err != nil {
		if tracewayerr.ClassifyOf(err) == tracewayerr.KindInternal {
			log.Error("failed to fail span", "id", id, "error", err)
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, span)
}

// DeleteSpan handles DELETE /spans/{id}.
func (c *spanController) DeleteSpan(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid span id")
		return
	}
	if err := c.spans.DeleteSpan(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse[any](w, http.StatusNoContent, nil)
}
