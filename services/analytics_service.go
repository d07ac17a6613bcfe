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

package services

import (
	"context"
	"log/slog"

	"github.com/tracewayhq/traceway/analytics"
	"github.com/tracewayhq/traceway/storage"
)

// AnalyticsService runs aggregate queries over stored spans (spec.md §4.E).
// It never mutates state, so it publishes no bus events.
type AnalyticsService interface {
	RunAnalytics(ctx context.Context, q storage.AnalyticsQuery) (*storage.AnalyticsResult, error)
	Summary(ctx context.Context) (*analytics.Summary, error)
	Stats(ctx context.Context) (map[string]any, error)
}

type analyticsService struct {
	logger *slog.Logger
	store  storage.Store
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(logger *slog.Logger, store storage.Store) AnalyticsService {
	return &analyticsService{logger: logger, store: store}
}

func (s *analyticsService) RunAnalytics(ctx context.Context, q storage.AnalyticsQuery) (*storage.AnalyticsResult, error) {
	result, err := s.store.RunAnalytics(ctx, q)
	if err != nil {
		s.logger.Error("failed to run analytics", "group_by", q.GroupBy, "metrics", q.Metrics, "error", err)
		return nil, err
	}
	return result, nil
}

func (s *analyticsService) Summary(ctx context.Context) (*analytics.Summary, error) {
	spans, err := s.store.ListSpans(ctx, storage.SpanFilter{})
	if err != nil {
		s.logger.Error("failed to list spans for summary", "error", err)
		return nil, err
	}
	return analytics.ComputeSummary(spans), nil
}

func (s *analyticsService) Stats(ctx context.Context) (map[string]any, error) {
	return s.store.Stats(ctx)
}
