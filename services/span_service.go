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
	"github.com/tracewayhq/traceway/fileregistry"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
)

// SpanService defines span operations over the storage backend, emitting
// bus events after each durable mutation (spec.md §4.F).
type SpanService interface {
	CreateSpan(ctx context.Context, p storage.CreateSpanParams) (*models.Span, error)
	GetSpan(ctx context.Context, id uuid.UUID) (*models.Span, error)
	ListSpans(ctx context.Context, f storage.SpanFilter) ([]*models.Span, error)
	CompleteSpan(ctx context.Context, id uuid.UUID, output any, usage *storage.SpanUsage) (*models.Span, error)
	FailSpan(ctx context.Context, id uuid.UUID, errMsg string) (*models.Span, error)
	DeleteSpan(ctx context.Context, id uuid.UUID) error
}

type spanService struct {
	logger *slog.Logger
	store  storage.Store
	bus    *eventbus.Bus
	files  *fileregistry.Registry
}

// NewSpanService creates a new span service. files records fs_write/fs_read
// activity against the file-version registry as spans are created
// (spec.md §4.G).
func NewSpanService(logger *slog.Logger, store storage.Store, bus *eventbus.Bus, files *fileregistry.Registry) SpanService {
	return &spanService{logger: logger, store: store, bus: bus, files: files}
}

// CreateSpan implements spec.md §4.G's file-version-registry wiring: an
// fs_write span has its id pinned before the registry write so the
// resulting FileVersion can reference the span that will own it, and the
// version hash/size are copied onto Kind before the span is persisted (its
// Validate() requires the hash already populated). An fs_read span is
// recorded against the registry after creation, as a read reference rather
// than a Kind field.
func (s *spanService) CreateSpan(ctx context.Context, p storage.CreateSpanParams) (*models.Span, error) {
	if p.Kind.Type == models.SpanKindFSWrite && s.files != nil {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		fv, err := s.files.RecordWrite(ctx, p.Kind.Path, p.Content, &p.ID, &p.TraceID)
		if err != nil {
			s.logger.Error("failed to record file write", "path", p.Kind.Path, "error", err)
			return nil, err
		}
		p.Kind.FileVersion = &fv.Hash
		written := fv.Size
		p.Kind.BytesWritten = &written
	}

	span, err := s.store.CreateSpan(ctx, p)
	if err != nil {
		s.logger.Error("failed to create span", "trace_id", p.TraceID, "error", err)
		return nil, err
	}

	if span.Kind.Type == models.SpanKindFSRead && s.files != nil {
		if _, err := s.files.RecordRead(ctx, span.Kind.Path, &span.ID, &span.TraceID); err != nil {
			s.logger.Error("failed to record file read", "path", span.Kind.Path, "error", err)
		}
	}

	s.publish(eventbus.EventSpanCreated, span.ID, span)
	return span, nil
}

func (s *spanService) GetSpan(ctx context.Context, id uuid.UUID) (*models.Span, error) {
	return s.store.GetSpan(ctx, id)
}

func (s *spanService) ListSpans(ctx context.Context, f storage.SpanFilter) ([]*models.Span, error) {
	return s.store.ListSpans(ctx, f)
}

func (s *spanService) CompleteSpan(ctx context.Context, id uuid.UUID, output any, usage *storage.SpanUsage) (*models.Span, error) {
	span, err := s.store.CompleteSpan(ctx, id, output, usage)
	if err != nil {
		s.logger.Error("failed to complete span", "id", id, "error", err)
		return nil, err
	}
	s.publish(eventbus.EventSpanCompleted, span.ID, span)
	return span, nil
}

func (s *spanService) FailSpan(ctx context.Context, id uuid.UUID, errMsg string) (*models.Span, error) {
	span, err := s.store.FailSpan(ctx, id, errMsg)
	if err != nil {
		s.logger.Error("failed to fail span", "id", id, "error", err)
		return nil, err
	}
	s.publish(eventbus.EventSpanFailed, span.ID, span)
	return span, nil
}

func (s *spanService) DeleteSpan(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteSpan(ctx, id); err != nil {
		s.logger.Error("failed to delete span", "id", id, "error", err)
		return err
	}
	s.publish(eventbus.EventSpanDeleted, id, nil)
	return nil
}

func (s *spanService) publish(t eventbus.EventType, id uuid.UUID, payload any) {
	if s.bus == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	s.bus.Publish(eventbus.Event{Type: t, ID: id, Payload: raw, Timestamp: time.Now().UTC()})
}
