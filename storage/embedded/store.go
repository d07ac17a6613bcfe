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

package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tracewayhq/traceway/fileregistry"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/tracewayerr"
)

// Store is the embedded, single-file sqlite implementation of storage.Store.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens (creating if absent) the sqlite database at dsn and brings its
// schema up to the latest migration. Per spec.md §9, the embedded backend
// serializes writes through a single connection; a separate read-only
// connection pool would be added by a caller that needs concurrent reads
// without blocking on the writer, but a single pool is sufficient at
// Traceway's expected embedded-deployment scale.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	if err := m.Migrate(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func tenant(ctx context.Context) string {
	return storage.TenantFromContext(ctx)
}

// ---- Traces ----

// CreateTrace is idempotent on a caller-supplied p.ID: a second call with
// the same id returns the existing trace unchanged (spec.md §4.C).
func (s *Store) CreateTrace(ctx context.Context, p storage.CreateTraceParams) (*models.Trace, error) {
	if p.ID != nil {
		var existing traceRow
		err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", *p.ID, tenant(ctx)).First(&existing).Error
		if err == nil {
			return rowToTrace(existing), nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
		}
	}

	id := uuid.New()
	if p.ID != nil {
		id = *p.ID
	}
	row := traceRow{
		ID:        id,
		Name:      p.Name,
		TagsJSON:  string(mustJSON(p.Tags)),
		CreatedAt: time.Now().UTC(),
		TenantKey: tenant(ctx),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return rowToTrace(row), nil
}

// ensureTrace creates an empty-named trace for id if none exists yet,
// implicitly opening a trace for a span whose trace_id was never created
// explicitly (spec.md §4.C).
func (s *Store) ensureTrace(tx *gorm.DB, ctx context.Context, id uuid.UUID) error {
	var existing traceRow
	err := tx.Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&traceRow{
		ID: id, Name: "", TagsJSON: string(mustJSON(nil)), CreatedAt: time.Now().UTC(), TenantKey: tenant(ctx),
	}).Error
}

func (s *Store) GetTrace(ctx context.Context, id uuid.UUID) (*models.TraceWithSpans, error) {
	var tr traceRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&tr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrTraceNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}

	var spanRows []spanRow
	if err := s.db.WithContext(ctx).Where("trace_id = ? AND tenant_key = ?", id, tenant(ctx)).
		Order("status_started_at ASC").Find(&spanRows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}

	spans := make([]models.Span, 0, len(spanRows))
	for _, r := range spanRows {
		spans = append(spans, *rowToSpan(r))
	}

	return &models.TraceWithSpans{
		Trace: *rowToTrace(tr),
		Count: len(spans),
		Spans: spans,
	}, nil
}

func (s *Store) ListTraces(ctx context.Context, f storage.TraceFilter) ([]*models.Trace, error) {
	q := s.db.WithContext(ctx).Where("tenant_key = ?", tenant(ctx))
	if f.NameContains != nil && *f.NameContains != "" {
		q = q.Where("name LIKE ?", "%"+*f.NameContains+"%")
	}
	var rows []traceRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	out := make([]*models.Trace, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToTrace(r))
	}
	return out, nil
}

// DeleteTrace deletes a trace atomically with its spans (spec.md §4.C).
func (s *Store) DeleteTrace(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&traceRow{})
		if res.Error != nil {
			return tracewayerr.Wrap(tracewayerr.KindInternal, res.Error)
		}
		if res.RowsAffected == 0 {
			return tracewayerr.ErrTraceNotFound
		}
		if err := tx.Where("trace_id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&spanRow{}).Error; err != nil {
			return tracewayerr.Wrap(tracewayerr.KindInternal, err)
		}
		return nil
	})
}

// ClearAll wipes every trace/span/file row for the active tenant (the
// "cleared" event's source operation).
func (s *Store) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t := tenant(ctx)
		for _, table := range []string{"traces", "spans", "file_versions", "tracked_files", "file_blobs"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE tenant_key = ?", t).Error; err != nil {
				return tracewayerr.Wrap(tracewayerr.KindInternal, err)
			}
		}
		return nil
	})
}

// ---- Spans ----

func (s *Store) CreateSpan(ctx context.Context, p storage.CreateSpanParams) (*models.Span, error) {
	if err := p.Kind.Validate(); err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInvalidArgument, err)
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := spanToRow(&models.Span{
		ID:       id,
		TraceID:  p.TraceID,
		ParentID: p.ParentID,
		Name:     p.Name,
		Kind:     p.Kind,
		Input:    p.Input,
		Status:   models.Status{Phase: models.StatusRunning, StartedAt: time.Now().UTC()},
	}, tenant(ctx))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.ParentID != nil {
			var parent spanRow
			err := tx.Where("id = ? AND trace_id = ?", *p.ParentID, p.TraceID).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tracewayerr.ErrParentNotInTrace
			} else if err != nil {
				return tracewayerr.Wrap(tracewayerr.KindInternal, err)
			}
		}
		// If trace_id has no trace, create one with an empty name
		// (spec.md §4.C).
		if err := s.ensureTrace(tx, ctx, p.TraceID); err != nil {
			return tracewayerr.Wrap(tracewayerr.KindInternal, err)
		}
		if err := tx.Create(&row).Error; err != nil {
			return tracewayerr.Wrap(tracewayerr.KindInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rowToSpan(row), nil
}

func (s *Store) GetSpan(ctx context.Context, id uuid.UUID) (*models.Span, error) {
	var row spanRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrSpanNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return rowToSpan(row), nil
}

func (s *Store) ListSpans(ctx context.Context, f storage.SpanFilter) ([]*models.Span, error) {
	q := s.db.WithContext(ctx).Where("tenant_key = ?", tenant(ctx))
	if f.TraceID != nil {
		q = q.Where("trace_id = ?", *f.TraceID)
	}
	if f.Status != nil {
		q = q.Where("status_phase = ?", *f.Status)
	}
	if f.Kind != nil {
		q = q.Where("kind_type = ?", *f.Kind)
	}
	if f.Model != nil {
		q = q.Where("kind_type = ? AND kind_model = ?", models.SpanKindLLMCall, *f.Model)
	}
	if f.Provider != nil {
		q = q.Where("kind_provider = ?", *f.Provider)
	}
	if f.NameContains != nil && *f.NameContains != "" {
		q = q.Where("instr(name, ?) > 0", *f.NameContains)
	}
	if f.Path != nil && *f.Path != "" {
		q = q.Where("kind_path LIKE ?", *f.Path+"%")
	}
	if f.Since != nil {
		q = q.Where("status_started_at >= ?", *f.Since)
	}
	if f.Until != nil {
		q = q.Where("status_started_at <= ?", *f.Until)
	}

	var rows []spanRow
	if err := q.Order("status_started_at ASC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	out := make([]*models.Span, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToSpan(r))
	}
	return out, nil
}

// CompleteSpan transitions a running span to completed; terminal spans
// cannot transition again (spec.md §3). A non-nil usage field is merged
// into the span's Kind (input_tokens/output_tokens/cost) so a proxied
// llm_call surfaces its usage the same way a directly-reported one does
// (spec.md §4.H).
func (s *Store) CompleteSpan(ctx context.Context, id uuid.UUID, output any, usage *storage.SpanUsage) (*models.Span, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"output_json":     string(mustJSON(output)),
		"status_phase":    models.StatusCompleted,
		"status_ended_at": now,
	}
	if usage != nil {
		if usage.InputTokens != nil {
			updates["kind_input_tokens"] = *usage.InputTokens
		}
		if usage.OutputTokens != nil {
			updates["kind_output_tokens"] = *usage.OutputTokens
		}
		if usage.Cost != nil {
			updates["kind_cost"] = *usage.Cost
		}
	}
	res := s.db.WithContext(ctx).Model(&spanRow{}).
		Where("id = ? AND tenant_key = ? AND status_phase = ?", id, tenant(ctx), models.StatusRunning).
		Updates(updates)
	if res.Error != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, s.terminalOrNotFound(ctx, id)
	}
	return s.GetSpan(ctx, id)
}

// FailSpan transitions a running span to failed with errMsg.
func (s *Store) FailSpan(ctx context.Context, id uuid.UUID, errMsg string) (*models.Span, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&spanRow{}).
		Where("id = ? AND tenant_key = ? AND status_phase = ?", id, tenant(ctx), models.StatusRunning).
		Updates(map[string]any{
			"status_phase":    models.StatusFailed,
			"status_ended_at": now,
			"status_error":    errMsg,
		})
	if res.Error != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, s.terminalOrNotFound(ctx, id)
	}
	return s.GetSpan(ctx, id)
}

func (s *Store) terminalOrNotFound(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSpan(ctx, id); err != nil {
		return err
	}
	return tracewayerr.ErrSpanTerminal
}

func (s *Store) DeleteSpan(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&spanRow{})
	if res.Error != nil {
		return tracewayerr.Wrap(tracewayerr.KindInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		return tracewayerr.ErrSpanNotFound
	}
	return nil
}

// ---- Files ----

func (s *Store) RecordWrite(ctx context.Context, path string, content []byte, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	hash := fileregistry.Hash(content)
	now := time.Now().UTC()
	t := tenant(ctx)

	var fv *models.FileVersion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(onConflictDoNothingHash()).Create(&fileBlobRow{
			Hash: hash, Content: content, Size: int64(len(content)), TenantKey: t,
		}).Error; err != nil {
			return err
		}

		version := fileVersionRow{
			Hash: hash, Path: path, Size: int64(len(content)), CreatedAt: now,
			CreatedBySpanID: spanID, CreatedByTraceID: traceID, Operation: "write", TenantKey: t,
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}

		var tracked trackedFileRow
		err := tx.Where("path = ? AND tenant_key = ?", path, t).First(&tracked).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			tracked = trackedFileRow{
				Path: path, CurrentHash: hash, VersionCount: 1,
				CreatedAt: now, UpdatedAt: now, TenantKey: t,
			}
			if err := tx.Create(&tracked).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			tracked.CurrentHash = hash
			tracked.VersionCount++
			tracked.UpdatedAt = now
			if err := tx.Save(&tracked).Error; err != nil {
				return err
			}
		}

		fv = &models.FileVersion{
			Hash: hash, Path: path, Size: version.Size, CreatedAt: now,
			CreatedBySpanID: spanID, CreatedByTraceID: traceID, TenantKey: t,
		}
		return nil
	})
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return fv, nil
}

// RecordRead implements the fs_read version-reference case of spec.md §4.G:
// it records a version-reference against path's currently tracked hash,
// attributing it to spanID/traceID so the read surfaces alongside writes in
// GetFileTraces. If path has no tracked hash yet, it returns nil without
// error and records nothing.
func (s *Store) RecordRead(ctx context.Context, path string, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	t := tenant(ctx)
	var tracked trackedFileRow
	err := s.db.WithContext(ctx).Where("path = ? AND tenant_key = ?", path, t).First(&tracked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}

	var existing fileVersionRow
	err = s.db.WithContext(ctx).Where("path = ? AND hash = ? AND tenant_key = ?", path, tracked.CurrentHash, t).
		Order("created_at DESC").First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}

	now := time.Now().UTC()
	version := fileVersionRow{
		Hash: tracked.CurrentHash, Path: path, Size: existing.Size, CreatedAt: now,
		CreatedBySpanID: spanID, CreatedByTraceID: traceID, Operation: "read", TenantKey: t,
	}
	if err := s.db.WithContext(ctx).Create(&version).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return &models.FileVersion{
		Hash: tracked.CurrentHash, Path: path, Size: version.Size, CreatedAt: now,
		CreatedBySpanID: spanID, CreatedByTraceID: traceID, TenantKey: t,
	}, nil
}

func (s *Store) ListFiles(ctx context.Context, prefix string) ([]*models.TrackedFile, error) {
	q := s.db.WithContext(ctx).Where("tenant_key = ?", tenant(ctx))
	if prefix != "" {
		q = q.Where("path LIKE ?", prefix+"%")
	}
	var rows []trackedFileRow
	if err := q.Order("path ASC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	out := make([]*models.TrackedFile, 0, len(rows))
	for _, r := range rows {
		out = append(out, &models.TrackedFile{
			Path: r.Path, CurrentHash: r.CurrentHash, VersionCount: r.VersionCount,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, TenantKey: r.TenantKey,
		})
	}
	return out, nil
}

func (s *Store) GetFileVersions(ctx context.Context, path string) ([]*models.FileVersion, error) {
	var rows []fileVersionRow
	err := s.db.WithContext(ctx).Where("path = ? AND tenant_key = ?", path, tenant(ctx)).
		Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	out := make([]*models.FileVersion, 0, len(rows))
	for _, r := range rows {
		out = append(out, &models.FileVersion{
			Hash: r.Hash, Path: r.Path, Size: r.Size, CreatedAt: r.CreatedAt,
			CreatedBySpanID: r.CreatedBySpanID, CreatedByTraceID: r.CreatedByTraceID, TenantKey: r.TenantKey,
		})
	}
	return out, nil
}

func (s *Store) GetFileContent(ctx context.Context, hash string) ([]byte, error) {
	var row fileBlobRow
	err := s.db.WithContext(ctx).Where("hash = ? AND tenant_key = ?", hash, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrFileNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return row.Content, nil
}

func (s *Store) GetFileTraces(ctx context.Context, path string) ([]models.FileTraceRef, error) {
	var rows []fileVersionRow
	err := s.db.WithContext(ctx).Where("path = ? AND tenant_key = ? AND created_by_span_id IS NOT NULL", path, tenant(ctx)).
		Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	out := make([]models.FileTraceRef, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.FileTraceRef{
			SpanID: *r.CreatedBySpanID, TraceID: *r.CreatedByTraceID, Operation: r.Operation, At: r.CreatedAt,
		})
	}
	return out, nil
}

// ---- Analytics ----

// RunAnalytics filters spans via ListSpans and delegates the aggregation
// itself to package analytics, keeping the metric/dimension logic
// backend-agnostic.
func (s *Store) RunAnalytics(ctx context.Context, q storage.AnalyticsQuery) (*storage.AnalyticsResult, error) {
	return runAnalytics(ctx, s, q)
}

// ---- Datasets ----

func (s *Store) CreateDataset(ctx context.Context, name, description string) (*models.Dataset, error) {
	now := time.Now().UTC()
	row := datasetRow{
		ID: uuid.New(), Name: name, Description: description,
		CreatedAt: now, UpdatedAt: now, TenantKey: tenant(ctx),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueConstraintErr(err) {
			return nil, tracewayerr.ErrDatasetNameTaken
		}
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return rowToDataset(row), nil
}

func (s *Store) GetDataset(ctx context.Context, id uuid.UUID) (*models.Dataset, error) {
	var row datasetRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrDatasetNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return rowToDataset(row), nil
}

func (s *Store) ListDatasets(ctx context.Context) ([]*models.Dataset, error) {
	var rows []datasetRow
	if err := s.db.WithContext(ctx).Where("tenant_key = ?", tenant(ctx)).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
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
			return tracewayerr.Wrap(tracewayerr.KindInternal, res.Error)
		}
		if res.RowsAffected == 0 {
			return tracewayerr.ErrDatasetNotFound
		}
		if err := tx.Where("dataset_id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&datapointRow{}).Error; err != nil {
			return tracewayerr.Wrap(tracewayerr.KindInternal, err)
		}
		if err := tx.Where("dataset_id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&queueItemRow{}).Error; err != nil {
			return tracewayerr.Wrap(tracewayerr.KindInternal, err)
		}
		return nil
	})
}

// ---- Datapoints ----

func (s *Store) CreateDatapoint(ctx context.Context, dp *models.Datapoint) (*models.Datapoint, error) {
	if dp.ID == uuid.Nil {
		dp.ID = uuid.New()
	}
	dp.CreatedAt = time.Now().UTC()
	dp.TenantKey = tenant(ctx)
	row := datapointToRow(dp)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return rowToDatapoint(row), nil
}

func (s *Store) GetDatapoint(ctx context.Context, id uuid.UUID) (*models.Datapoint, error) {
	var row datapointRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrDatapointNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return rowToDatapoint(row), nil
}

func (s *Store) ListDatapoints(ctx context.Context, datasetID uuid.UUID) ([]*models.Datapoint, error) {
	var rows []datapointRow
	err := s.db.WithContext(ctx).Where("dataset_id = ? AND tenant_key = ?", datasetID, tenant(ctx)).
		Order("created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	out := make([]*models.Datapoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToDatapoint(r))
	}
	return out, nil
}

// ---- Queue ----

func (s *Store) EnqueueDatapoint(ctx context.Context, datasetID, datapointID uuid.UUID) (*models.QueueItem, error) {
	dp, err := s.GetDatapoint(ctx, datapointID)
	if err != nil {
		return nil, err
	}
	row := queueItemRow{
		ID: uuid.New(), DatasetID: datasetID, DatapointID: datapointID,
		State: string(models.QueuePending), OriginalDataJSON: string(mustJSON(dp)),
		CreatedAt: time.Now().UTC(), TenantKey: tenant(ctx),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	return rowToQueueItem(row), nil
}

func (s *Store) GetQueueItem(ctx context.Context, id uuid.UUID) (*models.QueueItem, error) {
	var row queueItemRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrQueueItemNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
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
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	out := make([]*models.QueueItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToQueueItem(r))
	}
	return out, nil
}

// ClaimQueueItem performs the pending→claimed transition with a
// compare-and-swap Updates call, mirroring the optimistic-concurrency
// pattern repositories.LLMProxyRepo uses for state transitions.
func (s *Store) ClaimQueueItem(ctx context.Context, id uuid.UUID, claimer string) (*models.QueueItem, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&queueItemRow{}).
		Where("id = ? AND tenant_key = ? AND state = ?", id, tenant(ctx), string(models.QueuePending)).
		Updates(map[string]any{
			"state": string(models.QueueClaimed), "claimer": claimer, "claimed_at": now,
		})
	if res.Error != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetQueueItem(ctx, id); err != nil {
			return nil, err
		}
		return nil, tracewayerr.ErrQueueAlreadyClaimed
	}
	return s.GetQueueItem(ctx, id)
}

// SubmitQueueItem performs the claimed→completed transition.
func (s *Store) SubmitQueueItem(ctx context.Context, id uuid.UUID, editedData map[string]any) (*models.QueueItem, error) {
	res := s.db.WithContext(ctx).Model(&queueItemRow{}).
		Where("id = ? AND tenant_key = ? AND state = ?", id, tenant(ctx), string(models.QueueClaimed)).
		Updates(map[string]any{
			"state": string(models.QueueCompleted), "edited_data_json": string(mustJSON(editedData)),
		})
	if res.Error != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetQueueItem(ctx, id); err != nil {
			return nil, err
		}
		return nil, tracewayerr.ErrQueueStateMismatch
	}
	return s.GetQueueItem(ctx, id)
}

// ---- Stats ----

func (s *Store) Stats(ctx context.Context) (map[string]any, error) {
	var traceCount, spanCount, fileCount int64
	t := tenant(ctx)
	s.db.WithContext(ctx).Model(&traceRow{}).Where("tenant_key = ?", t).Count(&traceCount)
	s.db.WithContext(ctx).Model(&spanRow{}).Where("tenant_key = ?", t).Count(&spanCount)
	s.db.WithContext(ctx).Model(&trackedFileRow{}).Where("tenant_key = ?", t).Count(&fileCount)
	return map[string]any{
		"traces": traceCount,
		"spans":  spanCount,
		"files":  fileCount,
	}, nil
}

func mustJSON(v any) []byte {
	if v == nil {
		return []byte("null")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
