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
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/dataset"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
)

// DatasetService exposes the dataset/annotation-queue subsystem
// (spec.md §4.J): CRUD reads come straight from storage.Store, while
// mutations delegate to dataset.Service so every one of them publishes its
// bus event exactly once, after it is durable.
type DatasetService interface {
	CreateDataset(ctx context.Context, name, description string) (*models.Dataset, error)
	GetDataset(ctx context.Context, id uuid.UUID) (*models.Dataset, error)
	ListDatasets(ctx context.Context) ([]*models.Dataset, error)
	DeleteDataset(ctx context.Context, id uuid.UUID) error

	ExportSpan(ctx context.Context, datasetID, spanID uuid.UUID) (*models.Datapoint, error)
	Import(ctx context.Context, datasetID uuid.UUID, format dataset.ImportFormat, r io.Reader) ([]*models.Datapoint, error)
	GetDatapoint(ctx context.Context, id uuid.UUID) (*models.Datapoint, error)
	ListDatapoints(ctx context.Context, datasetID uuid.UUID) ([]*models.Datapoint, error)

	EnqueueDatapoint(ctx context.Context, datasetID, datapointID uuid.UUID) (*models.QueueItem, error)
	GetQueueItem(ctx context.Context, id uuid.UUID) (*models.QueueItem, error)
	ListQueueItems(ctx context.Context, datasetID uuid.UUID, state *models.QueueState) ([]*models.QueueItem, error)
	ClaimQueueItem(ctx context.Context, id uuid.UUID, claimer string) (*models.QueueItem, error)
	SubmitQueueItem(ctx context.Context, id uuid.UUID, editedData map[string]any) (*models.QueueItem, error)
}

type datasetService struct {
	logger *slog.Logger
	store  storage.Store
	svc    *dataset.Service
}

// NewDatasetService creates a new dataset service.
func NewDatasetService(logger *slog.Logger, store storage.Store, svc *dataset.Service) DatasetService {
	return &datasetService{logger: logger, store: store, svc: svc}
}

func (s *datasetService) CreateDataset(ctx context.Context, name, description string) (*models.Dataset, error) {
	ds, err := s.svc.CreateDataset(ctx, name, description)
	if err != nil {
		s.logger.Error("failed to create dataset", "name", name, "error", err)
		return nil, err
	}
	return ds, nil
}

func (s *datasetService) GetDataset(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	return s.store.GetDataset(ctx, id)
}

func (s *datasetService) ListDatasets(ctx context.Context) ([]*models.Dataset, error) {
	return s.store.ListDatasets(ctx)
}

func (s *datasetService) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	if err := s.svc.DeleteDataset(ctx, id); err != nil {
		s.logger.Error("failed to delete dataset", "id", id, "error", err)
		return err
	}
	return nil
}

func (s *datasetService) ExportSpan(ctx context.Context, datasetID, spanID uuid.UUID) (*models.Datapoint, error) {
	return s.svc.ExportSpan(ctx, datasetID, spanID)
}

func (s *datasetService) Import(ctx context.Context, datasetID uuid.UUID, format dataset.ImportFormat, r io.Reader) ([]*models.Datapoint, error) {
	dps, err := s.svc.Import(ctx, datasetID, format, r)
	if err != nil {
		s.logger.Error("failed to import datapoints", "dataset_id", datasetID, "format", format, "error", err)
		return nil, err
	}
	return dps, nil
}

func (s *datasetService) GetDatapoint(ctx context.Context, id uuid.UUID) (*models.Datapoint, error) {
	return s.store.GetDatapoint(ctx, id)
}

func (s *datasetService) ListDatapoints(ctx context.Context, datasetID uuid.UUID) ([]*models.Datapoint, error) {
	return s.store.ListDatapoints(ctx, datasetID)
}

func (s *datasetService) EnqueueDatapoint(ctx context.Context, datasetID, datapointID uuid.UUID) (*models.QueueItem, error) {
	return s.svc.EnqueueDatapoint(ctx, datasetID, datapointID)
}

func (s *datasetService) GetQueueItem(ctx context.Context, id uuid.UUID) (*models.QueueItem, error) {
	return s.store.GetQueueItem(ctx, id)
}

func (s *datasetService) ListQueueItems(ctx context.Context, datasetID uuid.UUID, state *models.QueueState) ([]*models.QueueItem, error) {
	return s.store.ListQueueItems(ctx, datasetID, state)
}

func (s *datasetService) ClaimQueueItem(ctx context.Context, id uuid.UUID, claimer string) (*models.QueueItem, error) {
	item, err := s.svc.ClaimQueueItem(ctx, id, claimer)
	if err != nil {
		s.logger.Error("failed to claim queue item", "id", id, "claimer", claimer, "error", err)
		return nil, err
	}
	return item, nil
}

func (s *datasetService) SubmitQueueItem(ctx context.Context, id uuid.UUID, editedData map[string]any) (*models.QueueItem, error) {
	item, err := s.svc.SubmitQueueItem(ctx, id, editedData)
	if err != nil {
		s.logger.Error("failed to submit queue item", "id", id, "error", err)
		return nil, err
	}
	return item, nil
}
