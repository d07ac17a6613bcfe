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

	"github.com/tracewayhq/traceway/middleware/logger"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/tracewayerr"
	"github.com/tracewayhq/traceway/utils"
)

// QueueController defines the interface for annotation-queue HTTP handlers.
type QueueController interface {
	Enqueue(w http.ResponseWriter, r *http.Request)
	ListQueueItems(w http.ResponseWriter, r *http.Request)
	GetQueueItem(w http.ResponseWriter, r *http.Request)
	Claim(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
}

type queueController struct {
	datasets services.DatasetService
}

// NewQueueController creates a new queue controller.
func NewQueueController(datasets services.DatasetService) QueueController {
	return &queueController{datasets: datasets}
}

type enqueueRequest struct {
	DatasetID   string `json:"datasetId"`
	DatapointID string `json:"datapointId"`
}

// Enqueue handles POST /queue.
func (c *queueController) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}
	datasetID, err := pathUUIDFromString(req.DatasetID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid dataset id")
		return
	}
	datapointID, err := pathUUIDFromString(req.DatapointID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid datapoint id")
		return
	}

	item, err := c.datasets.EnqueueDatapoint(r.Context(), datasetID, datapointID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusCreated, item)
}

// ListQueueItems handles GET /queue?dataset_id=&state=.
func (c *queueController) ListQueueItems(w http.ResponseWriter, r *http.Request) {
	datasetID, err := pathUUIDFromString(r.URL.Query().Get("dataset_id"))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid dataset_id")
		return
	}

	var state *models.QueueState
	if s := r.URL.Query().Get("state"); s != "" {
		qs := models.QueueState(s)
		state = &qs
	}

	items, err := c.datasets.ListQueueItems(r.Context(), datasetID, state)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, items)
}

// GetQueueItem handles GET /queue/{id}.
func (c *queueController) GetQueueItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid queue item id")
		return
	}
	item, err := c.datasets.GetQueueItem(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, item)
}

type claimRequest struct {
	Claimer string `json:"claimer"`
}

// Claim handles POST /queue/{id}/claim.
func (c *queueController) Claim(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid queue item id")
		return
	}
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	item, err := c.datasets.ClaimQueueItem(r.Context(), id, req.Claimer)
	if err != nil {
		if tracewayerr.ClassifyOf(err) == tracewayerr.KindInternal {
			log.Error("failed to claim queue item", "id", id, "error", err)
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, item)
}

type submitRequest struct {
	EditedData map[string]any `json:"editedData"`
}

// Submit handles POST /queue/{id}/submit.
func (c *queueController) Submit(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	id, err := pathUUID(r, "id")
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid queue item id")
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	item, err := c.datasets.SubmitQueueItem(r.Context(), id, req.EditedData)
	if err != nil {
		if tracewayerr.ClassifyOf(err) == tracewayerr.KindInternal {
			log.Error("failed to submit queue item", "id", id, "error", err)
		}
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, item)
}
