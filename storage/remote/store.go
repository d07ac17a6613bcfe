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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tracewayhq/traceway/analytics"
	"github.com/tracewayhq/traceway/fileregistry"
	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/tracewayerr"
)

// Store is the remote backend: Postgres for relational truth, BlobClient
// for content, VectorIndex for best-effort semantic search.
type Store struct {
	db     *gorm.DB
	blobs  *BlobClient
	vector *VectorIndex
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Config collects the three endpoints the remote backend depends on.
type Config struct {
	PostgresDSN   string
	BlobBaseURL   string
	WeaviateHost  string
	WeaviateHTTPS bool
}

// Open connects to Postgres, brings its schema current, and wires the blob
// and vector-index clients.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	if err := m.Migrate(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	var vector *VectorIndex
	if cfg.WeaviateHost != "" {
		scheme := "http"
		if cfg.WeaviateHTTPS {
			scheme = "https"
		}
		vector, err = NewVectorIndex(ctx, scheme, cfg.WeaviateHost, logger)
		if err != nil {
			return nil, fmt.Errorf("connect weaviate: %w", err)
		}
	}

	return &Store{
		db:     db,
		blobs:  NewBlobClient(cfg.BlobBaseURL, logger),
		vector: vector,
		logger: logger,
	}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func tenant(ctx context.Context) string { return storage.TenantFromContext(ctx) }

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
			return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
		}
	}

	id := uuid.New()
	if p.ID != nil {
		id = *p.ID
	}
	row := traceRow{ID: id, Name: p.Name, TagsJSON: string(mustJSON(p.Tags)), CreatedAt: time.Now().UTC(), TenantKey: tenant(ctx)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
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
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	var rows []spanRow
	if err := s.db.WithContext(ctx).Where("trace_id = ? AND tenant_key = ?", id, tenant(ctx)).Order("status_started_at ASC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	spans := make([]models.Span, 0, len(rows))
	for _, r := range rows {
		spans = append(spans, *rowToSpan(r))
	}
	return &models.TraceWithSpans{Trace: *rowToTrace(tr), Count: len(spans), Spans: spans}, nil
}

func (s *Store) ListTraces(ctx context.Context, f storage.TraceFilter) ([]*models.Trace, error) {
	q := s.db.WithContext(ctx).Where("tenant_key = ?", tenant(ctx))
	if f.NameContains != nil && *f.NameContains != "" {
		q = q.Where("name LIKE ?", "%"+*f.NameContains+"%")
	}
	var rows []traceRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]*models.Trace, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToTrace(r))
	}
	return out, nil
}

func (s *Store) DeleteTrace(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&traceRow{})
		if res.Error != nil {
			return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, res.Error)
		}
		if res.RowsAffected == 0 {
			return tracewayerr.ErrTraceNotFound
		}
		return tx.Where("trace_id = ? AND tenant_key = ?", id, tenant(ctx)).Delete(&spanRow{}).Error
	})
}

func (s *Store) ClearAll(ctx context.Context) error {
	t := tenant(ctx)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"traces", "spans", "file_versions", "tracked_files"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE tenant_key = ?", t).Error; err != nil {
				return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
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
	span := &models.Span{
		ID: id, TraceID: p.TraceID, ParentID: p.ParentID, Name: p.Name, Kind: p.Kind, Input: p.Input,
		Status: models.Status{Phase: models.StatusRunning, StartedAt: time.Now().UTC()},
	}
	row := spanToRow(span, tenant(ctx))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.ParentID != nil {
			var parent spanRow
			err := tx.Where("id = ? AND trace_id = ?", *p.ParentID, p.TraceID).First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tracewayerr.ErrParentNotInTrace
			} else if err != nil {
				return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
			}
		}
		// If trace_id has no trace, create one with an empty name
		// (spec.md §4.C).
		if err := s.ensureTrace(tx, ctx, p.TraceID); err != nil {
			return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
		}
		if err := tx.Create(&row).Error; err != nil {
			return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if text := searchableText(span); text != "" {
		s.vector.IndexSpan(ctx, tenant(ctx), span, text)
	}
	return rowToSpan(row), nil
}

func (s *Store) GetSpan(ctx context.Context, id uuid.UUID) (*models.Span, error) {
	var row spanRow
	err := s.db.WithContext(ctx).Where("id = ? AND tenant_key = ?", id, tenant(ctx)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.ErrSpanNotFound
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
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
		q = q.Where("name LIKE ?", "%"+*f.NameContains+"%")
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
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]*models.Span, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToSpan(r))
	}
	return out, nil
}

// CompleteSpan merges a non-nil usage into the span's Kind so a proxied
// llm_call's tokens/cost surface the same way a directly-reported one does
// (spec.md §4.H).
func (s *Store) CompleteSpan(ctx context.Context, id uuid.UUID, output any, usage *storage.SpanUsage) (*models.Span, error) {
	now := time.Now().UTC()
	updates := map[string]any{"output_json": string(mustJSON(output)), "status_phase": models.StatusCompleted, "status_ended_at": now}
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
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, s.terminalOrNotFound(ctx, id)
	}
	return s.GetSpan(ctx, id)
}

func (s *Store) FailSpan(ctx context.Context, id uuid.UUID, errMsg string) (*models.Span, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&spanRow{}).
		Where("id = ? AND tenant_key = ? AND status_phase = ?", id, tenant(ctx), models.StatusRunning).
		Updates(map[string]any{"status_phase": models.StatusFailed, "status_ended_at": now, "status_error": errMsg})
	if res.Error != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, res.Error)
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
		return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return tracewayerr.ErrSpanNotFound
	}
	s.vector.DeleteSpan(ctx, tenant(ctx), id)
	return nil
}

func searchableText(s *models.Span) string {
	switch s.Kind.Type {
	case models.SpanKindLLMCall:
		if s.Kind.InputPreview != nil {
			return *s.Kind.InputPreview
		}
	case models.SpanKindFSRead, models.SpanKindFSWrite:
		return s.Kind.Path
	}
	return s.Name
}

// ---- Files ----

func (s *Store) RecordWrite(ctx context.Context, path string, content []byte, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	hash := fileregistry.Hash(content)
	if err := s.blobs.Put(ctx, hash, content); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := tenant(ctx)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version := fileVersionRow{Hash: hash, Path: path, Size: int64(len(content)), CreatedAt: now, CreatedBySpanID: spanID, CreatedByTraceID: traceID, Operation: "write", TenantKey: t}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}
		var tracked trackedFileRow
		err := tx.Where("path = ? AND tenant_key = ?", path, t).First(&tracked).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			tracked = trackedFileRow{Path: path, CurrentHash: hash, VersionCount: 1, CreatedAt: now, UpdatedAt: now, TenantKey: t}
			return tx.Create(&tracked).Error
		case err != nil:
			return err
		default:
			tracked.CurrentHash = hash
			tracked.VersionCount++
			tracked.UpdatedAt = now
			return tx.Save(&tracked).Error
		}
	})
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	return &models.FileVersion{Hash: hash, Path: path, Size: int64(len(content)), CreatedAt: now, CreatedBySpanID: spanID, CreatedByTraceID: traceID, TenantKey: t}, nil
}

// RecordRead records a version-reference against path's currently tracked
// hash, attributing it to spanID/traceID so the read surfaces alongside
// writes in GetFileTraces. If path has no tracked hash yet, it returns nil
// without error and records nothing.
func (s *Store) RecordRead(ctx context.Context, path string, spanID, traceID *uuid.UUID) (*models.FileVersion, error) {
	t := tenant(ctx)
	var tracked trackedFileRow
	err := s.db.WithContext(ctx).Where("path = ? AND tenant_key = ?", path, t).First(&tracked).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}

	var existing fileVersionRow
	err = s.db.WithContext(ctx).Where("path = ? AND hash = ? AND tenant_key = ?", path, tracked.CurrentHash, t).
		Order("created_at DESC").First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}

	now := time.Now().UTC()
	version := fileVersionRow{
		Hash: tracked.CurrentHash, Path: path, Size: existing.Size, CreatedAt: now,
		CreatedBySpanID: spanID, CreatedByTraceID: traceID, Operation: "read", TenantKey: t,
	}
	if err := s.db.WithContext(ctx).Create(&version).Error; err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
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
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]*models.TrackedFile, 0, len(rows))
	for _, r := range rows {
		out = append(out, &models.TrackedFile{Path: r.Path, CurrentHash: r.CurrentHash, VersionCount: r.VersionCount, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, TenantKey: r.TenantKey})
	}
	return out, nil
}

func (s *Store) GetFileVersions(ctx context.Context, path string) ([]*models.FileVersion, error) {
	var rows []fileVersionRow
	err := s.db.WithContext(ctx).Where("path = ? AND tenant_key = ?", path, tenant(ctx)).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]*models.FileVersion, 0, len(rows))
	for _, r := range rows {
		out = append(out, &models.FileVersion{Hash: r.Hash, Path: r.Path, Size: r.Size, CreatedAt: r.CreatedAt, CreatedBySpanID: r.CreatedBySpanID, CreatedByTraceID: r.CreatedByTraceID, TenantKey: r.TenantKey})
	}
	return out, nil
}

func (s *Store) GetFileContent(ctx context.Context, hash string) ([]byte, error) {
	return s.blobs.Get(ctx, hash)
}

func (s *Store) GetFileTraces(ctx context.Context, path string) ([]models.FileTraceRef, error) {
	var rows []fileVersionRow
	err := s.db.WithContext(ctx).Where("path = ? AND tenant_key = ? AND created_by_span_id IS NOT NULL", path, tenant(ctx)).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	out := make([]models.FileTraceRef, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.FileTraceRef{SpanID: *r.CreatedBySpanID, TraceID: *r.CreatedByTraceID, Operation: r.Operation, At: r.CreatedAt})
	}
	return out, nil
}

// ---- Analytics ----

func (s *Store) RunAnalytics(ctx context.Context, q storage.AnalyticsQuery) (*storage.AnalyticsResult, error) {
	spans, err := s.ListSpans(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	result, err := analytics.Compute(spans, q.GroupBy, q.Metrics)
	if err != nil {
		return nil, tracewayerr.ErrUnsupportedMetric
	}
	return result, nil
}

// ---- Datasets / Datapoints / Queue ----
// Reuses the same relational shape as storage/embedded; see dataset.go.

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
