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
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/utils"
)

// AnalyticsController defines the interface for analytics HTTP handlers.
type AnalyticsController interface {
	RunAnalytics(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type analyticsController struct {
	analytics services.AnalyticsService
}

// NewAnalyticsController creates a new analytics controller.
func NewAnalyticsController(analytics services.AnalyticsService) AnalyticsController {
	return &analyticsController{analytics: analytics}
}

// RunAnalytics handles POST /analytics.
func (c *analyticsController) RunAnalytics(w http.ResponseWriter, r *http.Request) {
	var q storage.AnalyticsQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	result, err := c.analytics.RunAnalytics(r.Context(), q)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, result)
}

// Summary handles GET /analytics/summary.
func (c *analyticsController) Summary(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	summary, err := c.analytics.Summary(r.Context())
	if err != nil {
		log.Error("failed to compute summary", "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, summary)
}

// Stats handles GET /stats.
func (c *analyticsController) Stats(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLogger(r.Context())

	stats, err := c.analytics.Stats(r.Context())
	if err != nil {
		log.Error("failed to compute stats", "error", err)
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, http.StatusOK, stats)
}
