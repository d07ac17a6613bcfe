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

// Package dataset is the service layer over storage.Store for the
// dataset/annotation-queue subsystem (spec.md §4.J): span export into
// datapoints, JSON/JSONL/CSV ingest, and the enqueue/claim/submit review
// workflow, each mutation publishing its eventbus event once durable.
package dataset

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
)

// Service wraps storage.Store with the dataset/queue workflow and event
// publication (spec.md §4.J, §4.F).
type Service struct {
	store storage.Store
	bus   *eventbus.Bus
}

// New constructs a Service.
func New(store storage.Store, bus *eventbus.Bus) *Service {
	return &Service{store: store, bus: bus}
}

// ExportSpan reads span and appends it to dataset as a Datapoint: an
// llm_conversation when the span is an llm_call whose input carries a
// messages array, otherwise a generic datapoint over input/output
// (spec.md §4.J).
func (s *Service) ExportSpan(ctx context.Context, datasetID, spanID uuid.UUID) (*models.Datapoint, error) {
	span, err := s.store.GetSpan(ctx, spanID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetDataset(ctx, datasetID); err != nil {
		return nil, err
	}

	dp := &models.Datapoint{
		DatasetID: datasetID,
		Source:    models.SourceSpanExport,
		SpanID:    &span.ID,
	}

	if span.Kind.Type == models.SpanKindLLMCall {
		if msgs, ok := extractMessages(span.Input); ok {
			dp.Kind = models.DatapointLLMConversation
			dp.Messages = msgs
		}
	}
	if dp.Kind == "" {
		dp.Kind = models.DatapointGeneric
		dp.Input = span.Input
		dp.ActualOutput = span.Output
	}

	created, err := s.store.CreateDatapoint(ctx, dp)
	if err != nil {
		return nil, err
	}
	s.publish(eventbus.EventDatapointCreated, created.ID, created)
	return created, nil
}

// extractMessages attempts to decode input as {"messages": [{role, content}]}.
func extractMessages(input any) ([]models.ConversationMessage, bool) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, false
	}
	var payload struct {
		Messages []models.ConversationMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Messages) == 0 {
		return nil, false
	}
	return payload.Messages, true
}

// CreateDataset creates a named dataset and publishes dataset_created.
func (s *Service) CreateDataset(ctx context.Context, name, description string) (*models.Dataset, error) {
	ds, err := s.store.CreateDataset(ctx, name, description)
	if err != nil {
		return nil, err
	}
	s.publish(eventbus.EventDatasetCreated, ds.ID, ds)
	return ds, nil
}

// DeleteDataset removes a dataset and its datapoints/queue items, publishing
// dataset_deleted.
func (s *Service) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteDataset(ctx, id); err != nil {
		return err
	}
	s.publish(eventbus.EventDatasetDeleted, id, nil)
	return nil
}

// EnqueueDatapoint creates a pending QueueItem snapshotting the datapoint's
// current data, publishing queue_item_updated.
func (s *Service) EnqueueDatapoint(ctx context.Context, datasetID, datapointID uuid.UUID) (*models.QueueItem, error) {
	item, err := s.store.EnqueueDatapoint(ctx, datasetID, datapointID)
	if err != nil {
		return nil, err
	}
	s.publish(eventbus.EventQueueItemUpdated, item.ID, item)
	return item, nil
}

// ClaimQueueItem transitions a QueueItem pending -> claimed, or returns
// tracewayerr.ErrQueueAlreadyClaimed if it no longer is pending
// (spec.md §4.J).
func (s *Service) ClaimQueueItem(ctx context.Context, id uuid.UUID, claimer string) (*models.QueueItem, error) {
	item, err := s.store.ClaimQueueItem(ctx, id, claimer)
	if err != nil {
		return nil, err
	}
	s.publish(eventbus.EventQueueItemUpdated, item.ID, item)
	return item, nil
}

// SubmitQueueItem transitions a QueueItem claimed -> completed, storing the
// reviewer's edited data.
func (s *Service) SubmitQueueItem(ctx context.Context, id uuid.UUID, editedData map[string]any) (*models.QueueItem, error) {
	item, err := s.store.SubmitQueueItem(ctx, id, editedData)
	if err != nil {
		return nil, err
	}
	s.publish(eventbus.EventQueueItemUpdated, item.ID, item)
	return item, nil
}

func (s *Service) publish(t eventbus.EventType, id uuid.UUID, payload any) {
	if s.bus == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		raw, _ = json.Marshal(payload)
	}
	s.bus.Publish(eventbus.Event{Type: t, ID: id, Payload: raw, Timestamp: time.Now().UTC()})
}
