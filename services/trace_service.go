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
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
)

// TraceService defines trace operations over the storage backend, emitting
// bus events after each durable mutation (spec.md §4.F).
type TraceService interface {
	CreateTrace(ctx context.Context, p storage.CreateTraceParams) (*models.Trace, error)
	GetTrace(ctx context.Context, id uuid.UUID) (*models.TraceWithSpans, error)
	ListTraces(ctx context.Context, f storage.TraceFilter) ([]*models.Trace, error)
	DeleteTrace(ctx context.Context, id uuid.UUID) error
	ClearAll(ctx context.Context) error
}

type traceService struct {
	logger *slog.Logger
	store  storage.Store
	bus    *eventbus.Bus
}

// NewTraceService creates a new trace service.
func NewTraceService(logger *slog.Logger, store storage.Store, bus *eventbus.Bus) TraceService {
	return &traceService{logger: logger, store: store, bus: bus}
}

func (s *traceService) CreateTrace(ctx context.Context, p storage.CreateTraceParams) (*models.Trace, error) {
	tr, err := s.store.CreateTrace(ctx, p)
	if err != nil {
		s.logger.Error("failed to create trace", "name", p.Name, "error", err)
		return nil, err
	}
	s.publish(eventbus.EventTraceCreated, tr.ID, tr)
	return tr, nil
}

func (s *traceService) GetTrace(ctx context.Context, id uuid.UUID) (*models.TraceWithSpans, error) {
	return s.store.GetTrace(ctx, id)
}

func (s *traceService) ListTraces(ctx context.Context, f storage.TraceFilter) ([]*models.Trace, error) {
	return s.store.ListTraces(ctx, f)
}

func (s *traceService) DeleteTrace(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTrace(ctx, id); err != nil {
		s.logger.Error("failed to delete trace", "id", id, "error", err)
		return err
	}
	s.publish(eventbus.EventTraceDeleted, id, nil)
	return nil
}

func (s *traceService) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		s.logger.Error("failed to clear all data", "error", err)
		return err
	}
	s.publish(eventbus.EventCleared, uuid.Nil, nil)
	return nil
}

func (s *traceService) publish(t eventbus.EventType, id uuid.UUID, payload any) {
	if s.bus == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	s.bus.Publish(eventbus.Event{Type: t, ID: id, Payload: raw, Timestamp: time.Now().UTC()})
}
