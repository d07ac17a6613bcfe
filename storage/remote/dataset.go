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

package remote

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/tracewayerr"
)

func (s *Store) CreateDataset(ctx context.Context, name, description string) (*models.Dataset, error) {
	now := time.Now().UTC()
	row := datasetRow{ID: uuid.New(), Name: name, Description: description, CreatedAt: now, UpdatedAt: now, TenantKey: tenant(ctx)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueConstraintErr(err) {
			return nil, tracewayerr.ErrDatasetNameTaken
		}
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	return rowToDataset(row), nil
}

func (s *Store) GetDataset(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	var row datasetRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrDatasetNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	return rowToDataset(row), nil
}

func (s *Store) ListDatasets(ctx context.Context) ([]*models.Dataset, error) {
	var rows []datasetRow
	if err := s.db.WithContext(ctx).Where("tenant_key = ?", tenant(ctx)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]*models.Dataset, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToDataset(r))
	}
	return out, nil
}

func (s *Store) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&datasetRow{})
		if res.Error != nil {
			return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, res.Error)
		}
		if res.RowsAffected == 0 {
			return tracewayerr.ErrDatasetNotFound
		}
		if err := tx.Where("dataset_id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&datapointRow{}).Error; err != nil {
			return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
		}
		return tx.Where("dataset_id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&queueItemRow{}).Error
	})
}

func (s *Store) CreateDatapoint(ctx context.Context, dp *models.Datapoint) (*models.Datapoint, error) {
	if dp.ID == uuid.Nil {
		dp.ID = uuid.New()
	}
	dp.CreatedAt = time.Now().UTC()
	dp.TenantKey = tenant(ctx)
	row := datapointToRow(dp)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	return rowToDatapoint(row), nil
}

func (s *Store) GetDatapoint(ctx context.Context, id uuid.UUID) (*models.Datapoint, error) {
	var row datapointRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrDatapointNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	return rowToDatapoint(row), nil
}

func (s *Store) ListDatapoints(ctx context.Context, datasetID uuid.UUID) ([]*models.Datapoint, error) {
	var rows []datapointRow
	err := s.db.WithContext(ctx).Where("dataset_id = ? AND tenant_key = ?", datasetID, tenant(ctx)).Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]*models.Datapoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToDatapoint(r))
	}
	return out, nil
}

func (s *Store) EnqueueDatapoint(ctx context.Context, datasetID, datapointID uuid.UUID) (*models.QueueItem, error) {
	dp, err := s.GetDatapoint(ctx, datapointID)
	if err != nil {
		return nil, err
	}
	row := queueItemRow{ID: uuid.New(), DatasetID: datasetID, DatapointID: datapointID, State: string(models.QueuePending), OriginalDataJSON: string(mustJSON(dp)), CreatedAt: time.Now().UTC(), TenantKey: tenant(ctx)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	return rowToQueueItem(row), nil
}

func (s *Store) GetQueueItem(ctx context.Context, id uuid.UUID) (*models.QueueItem, error) {
	var row queueItemRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrQueueItemNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	return rowToQueueItem(row), nil
}

func (s *Store) ListQueueItems(ctx context.Context, datasetID uuid.UUID, state *models.QueueState) ([]*models.QueueItem, error) {
	q := s.db.WithContext(ctx).Where("dataset_id = ? AND tenant_key = ?", datasetID, tenant(ctx))
	if state != nil {
		q = q.Where("state = ?", string(*state))
	}
	var rows []queueItemRow
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]*models.QueueItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToQueueItem(r))
	}
	return out, nil
}

func (s *Store) ClaimQueueItem(ctx context.Context, id uuid.UUID, claimer string) (*models.QueueItem, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&queueItemRow{}).
		Where("id = ? AND tenant_key = ? AND state = ?", id, tenant(ctx), string(models.QueuePending)).
		Updates(map[string]any{"state": string(models.QueueClaimed), "claimer": claimer, "claimed_at": now})
	if res.Error != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetQueueItem(ctx, id); err != nil {
			return nil, err
		}
		return nil, tracewayerr.ErrQueueAlreadyClaimed
	}
	return s.GetQueueItem(ctx, id)
}

func (s *Store) SubmitQueueItem(ctx context.Context, id uuid.UUID, editedData map[string]any) (*models.QueueItem, error) {
	res := s.db.WithContext(ctx).Model(&queueItemRow{}).
		Where("id = ? AND tenant_key = ? AND state = ?", id, tenant(ctx), string(models.QueueClaimed)).
		Updates(map[string]any{"state": string(models.QueueCompleted), "edited_data_json": string(mustJSON(editedData))})
	if res.Error != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetQueueItem(ctx, id); err != nil {
			return nil, err
		}
		return nil, tracewayerr.ErrQueueStateMismatch
	}
	return s.GetQueueItem(ctx, id)
}

func (s *Store) Stats(ctx context.Context) (map[string]any, error) {
	var traceCount, spanCount, fileCount int64
	t := tenant(ctx)
	s.db.WithContext(ctx).Model(&traceRow{}).Where("tenant_key = ?", t).Count(&traceCount)
	s.db.WithContext(ctx).Model(&spanRow{}).Where("tenant_key = ?", t).Count(&spanCount)
	s.db.WithContext(ctx).Model(&trackedFileRow{}).Where("tenant_key = ?", t).Count(&fileCount)
	return map[string]any{"traces": traceCount, "spans": spanCount, "files": fileCount}, nil
}
