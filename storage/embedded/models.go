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

// Package embedded is the GORM-over-sqlite storage.Store implementation:
// a single-file, single-writer-connection database meant to run embedded
// in the Traceway process with no external dependency (spec.md §4.C).
package embedded

import (
	"time"

	"github.com/google/uuid"
)

// traceRow is the traces table. GORM column names are derived from field
// names; JSON-shaped columns are stored as TEXT and (de)serialized in the
// Store methods rather than via gorm's serializer tag, to keep the schema
// readable from a plain sqlite3 shell.
type traceRow struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	Name      string
	TagsJSON  string
	CreatedAt time.Time `gorm:"index"`
	EndedAt   *time.Time
	TenantKey string `gorm:"index"`
}

func (traceRow) TableName() string { return "traces" }

// spanRow is the spans table. The SpanKind tagged variant is flattened into
// nullable columns plus one JSON blob for the custom-kind attributes map.
type spanRow struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	TraceID   uuid.UUID `gorm:"type:text;index"`
	ParentID  *uuid.UUID `gorm:"type:text"`
	Name      string
	TenantKey string `gorm:"index"`

	KindType         string
	KindPath         string
	KindFileVersion  *string
	KindBytesRead    *int64
	KindBytesWritten *int64
	KindModel        string `gorm:"index"`
	KindProvider     *string
	KindInputTokens  *int64
	KindOutputTokens *int64
	KindCost         *float64
	KindInputPreview *string
	KindOutputPreview *string
	KindSubtype      string
	KindAttrsJSON    string

	InputJSON  string
	OutputJSON string

	StatusPhase     string `gorm:"index"`
	StatusStartedAt time.Time `gorm:"index"`
	StatusEndedAt   *time.Time
	StatusError     *string
}

func (spanRow) TableName() string { return "spans" }

// fileBlobRow is the content-addressed blob store, deduplicated by hash.
type fileBlobRow struct {
	Hash      string `gorm:"type:text;primaryKey"`
	Content   []byte
	Size      int64
	TenantKey string `gorm:"index"`
}

func (fileBlobRow) TableName() string { return "file_blobs" }

// fileVersionRow is one immutable (hash, path, created_at) version record.
type fileVersionRow struct {
	ID               uint `gorm:"primaryKey;autoIncrement"`
	Hash             string `gorm:"index"`
	Path             string `gorm:"index"`
	Size             int64
	CreatedAt        time.Time `gorm:"index"`
	CreatedBySpanID  *uuid.UUID `gorm:"type:text"`
	CreatedByTraceID *uuid.UUID `gorm:"type:text"`
	Operation        string // "read" | "write"
	TenantKey        string `gorm:"index"`
}

func (fileVersionRow) TableName() string { return "file_versions" }

// trackedFileRow is the current state of a logical path.
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
	ID          uuid.UUID `gorm:"type:text;primaryKey"`
	Name        string    `gorm:"index"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	TenantKey   string `gorm:"index"`
}

func (datasetRow) TableName() string { return "datasets" }

type datapointRow struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	DatasetID uuid.UUID `gorm:"type:text;index"`
	Kind      string
	Source    string
	SpanID    *uuid.UUID `gorm:"type:text"`

	MessagesJSON        string
	ExpectedMessageJSON string

	InputJSON          string
	ExpectedOutputJSON string
	ActualOutputJSON   string
	Score              *float64

	MetadataJSON string
	CreatedAt    time.Time
	TenantKey    string `gorm:"index"`
}

func (datapointRow) TableName() string { return "datapoints" }

type queueItemRow struct {
	ID               uuid.UUID `gorm:"type:text;primaryKey"`
	DatasetID        uuid.UUID `gorm:"type:text;index"`
	DatapointID      uuid.UUID `gorm:"type:text;index"`
	State            string    `gorm:"index"`
	Claimer          *string
	ClaimedAt        *time.Time
	OriginalDataJSON string
	EditedDataJSON   string
	CreatedAt        time.Time
	TenantKey        string `gorm:"index"`
}

func (queueItemRow) TableName() string { return "queue_items" }
