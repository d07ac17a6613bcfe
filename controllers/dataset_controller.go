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
	"io"
	"net/http"

	"github.com/tracewayhq/traceway/dataset"
	"github.com/tracewayhq/traceway/middleware/logger"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/utils"
)

// DatasetController defines the interface for dataset HTTP handlers.
type DatasetController interface {
	CreateDataset(w http.ResponseWriter, r *http.Request)
	ListDatasets(w http.ResponseWriter, r *http.Request)
	GetDataset(w http.ResponseWriter, r *http.Request)
	DeleteDataset(w http.ResponseWriter, r *http.Request)
	ExportSpan(w http.ResponseWriter, r *http.Request)
	Import(w http.ResponseWriter, r *http.Request)
	ListDatapoints(w http.ResponseWriter, r *http.Request)
	GetDatapoint(w http.ResponseWriter, r *http.Request)
}

type datasetController struct {
	datasets services.DatasetService
}

// NewDatasetController creates a new dataset controller.
func NewDatasetController(datasets services.DatasetService) DatasetController {
	return &datasetController{datasets: datasets}
}

type createDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateDataset handles POST /datasets.
func (c *datasetController) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ds, err := c.datasets.CreateDataset(r.Context(), req.Name, req.Description)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusCreated, ds)
}

// ListDatasets handles GET /datasets.
func (c *datasetController) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := c.datasets.ListDatasets(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, datasets)
}

// GetDataset handles GET /datasets/{id}.
func (c *datasetController) GetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	ds, err := c.datasets.GetDataset(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, ds)
}

// DeleteDataset handles DELETE /datasets/{id}.
func (c *datasetController) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	if err := c.datasets.DeleteDataset(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse[any](w, http.StatusNoContent, nil)
}

type exportSpanRequest struct {
	SpanID string `json:"spanId"`
}

// ExportSpan handles POST /datasets/{id}/export.
func (c *datasetController) ExportSpan(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	datasetID, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	var req exportSpanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}
	spanID, err := pathUUIDFromString(req.SpanID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid span id")
		return
	}

	dp, err := c.datasets.ExportSpan(r.Context(), datasetID, spanID)
	if err != nil {
		log.Error("failed to export span to dataset", "dataset_id", datasetID, "span_id", spanID, "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusCreated, dp)
}

// Import handles POST /datasets/{id}/import?format=json|jsonl|csv.
func (c *datasetController) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	datasetID, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}

	format := dataset.ImportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = dataset.FormatJSON
	}

	var body io.Reader = r.Body
	dps, err := c.datasets.Import(r.Context(), datasetID, format, body)
	if err != nil {
		log.Error("failed to import dataset", "dataset_id", datasetID, "format", format, "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusCreated, dps)
}

// ListDatapoints handles GET /datasets/{id}/datapoints.
func (c *datasetController) ListDatapoints(w http.ResponseWriter, r *http.Request) {
	datasetID, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	dps, err := c.datasets.ListDatapoints(r.Context(), datasetID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, dps)
}

// GetDatapoint handles GET /datapoints/{id}.
func (c *datasetController) GetDatapoint(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid datapoint id")
		return
	}
	dp, err := c.datasets.GetDatapoint(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, dp)
}
