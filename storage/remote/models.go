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

// Package remote is the "remote vector-native store" implementation of
// storage.Store (spec.md §4.C): a Postgres companion database holds the
// relational/event-sourced truth (traces, spans, datasets, queue, file
// metadata), a weaviate deployment (VectorIndex) holds a best-effort
// semantic index over span text, and a go-retryablehttp-backed BlobClient
// fetches/stores file content against an object-storage-fronting HTTP API
// instead of an in-database blob table.
package remote

import (
	"time"

	"github.com/google/uuid"
)

type traceRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string
	TagsJSON  string `gorm:"column:tags_json;type:jsonb"`
	CreatedAt time.Time `gorm:"index"`
	EndedAt   *time.Time
	TenantKey string `gorm:"index"`
}

func (traceRow) TableName() string { return "traces" }

type spanRow struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TraceID   uuid.UUID  `gorm:"type:uuid;index"`
	ParentID  *uuid.UUID `gorm:"type:uuid"`
	Name      string
	TenantKey string `gorm:"index"`

	KindType          string
	KindPath          string
	KindFileVersion   *string
	KindBytesRead     *int64
	KindBytesWritten  *int64
	KindModel         string `gorm:"index"`
	KindProvider      *string
	KindInputTokens   *int64
	KindOutputTokens  *int64
	KindCost          *float64
	KindInputPreview  *string
	KindOutputPreview *string
	KindSubtype       string
	KindAttrsJSON     string `gorm:"type:jsonb"`

	InputJSON  string `gorm:"type:jsonb"`
	OutputJSON string `gorm:"type:jsonb"`

	StatusPhase     string `gorm:"index"`
	StatusStartedAt time.Time `gorm:"index"`
	StatusEndedAt   *time.Time
	StatusError     *string
}

func (spanRow) TableName() string { return "spans" }

type fileVersionRow struct {
	ID               uint   `gorm:"primaryKey;autoIncrement"`
	Hash             string `gorm:"index"`
	Path             string `gorm:"index"`
	Size             int64
	CreatedAt        time.Time `gorm:"index"`
	CreatedBySpanID  *uuid.UUID `gorm:"type:uuid"`
	CreatedByTraceID *uuid.UUID `gorm:"type:uuid"`
	Operation        string
	TenantKey        string `gorm:"index"`
}

func (fileVersionRow) TableName() string { return "file_versions" }

type trackedFileRow struct {
	Path         string `gorm:"type:text;primaryKey"`
	CurrentHash  string
	VersionCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TenantKey    string `gorm:"index"`
}

func (trackedFileRow) TableName() string { return "tracked_files" }

type datasetRow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"index"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	TenantKey   string `gorm:"index"`
}

func (datasetRow) TableName() string { return "datasets" }

type datapointRow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	DatasetID uuid.UUID `gorm:"type:uuid;index"`
	Kind      string
	Source    string
	SpanID    *uuid.UUID `gorm:"type:uuid"`

	MessagesJSON        string `gorm:"type:jsonb"`
	ExpectedMessageJSON string `gorm:"type:jsonb"`

	InputJSON          string `gorm:"type:jsonb"`
	ExpectedOutputJSON string `gorm:"type:jsonb"`
	ActualOutputJSON   string `gorm:"type:jsonb"`
	Score              *float64

	MetadataJSON string `gorm:"type:jsonb"`
	CreatedAt    time.Time
	TenantKey    string `gorm:"index"`
}

func (datapointRow) TableName() string { return "datapoints" }

type queueItemRow struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	DatasetID        uuid.UUID `gorm:"type:uuid;index"`
	DatapointID      uuid.UUID `gorm:"type:uuid;index"`
	State            string    `gorm:"index"`
	Claimer          *string
	ClaimedAt        *time.Time
	OriginalDataJSON string `gorm:"type:jsonb"`
	EditedDataJSON   string `gorm:"type:jsonb"`
	CreatedAt        time.Time
	TenantKey        string `gorm:"index"`
}

func (queueItemRow) TableName() string { return "queue_items" }
