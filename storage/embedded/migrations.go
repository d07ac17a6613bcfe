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
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func runSQL(tx *gorm.DB, statements ...string) error {
	for _, s := range statements {
		if err := tx.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}

// migrations is the monotonic schema history. Each entry is append-only;
// once released, a migration's SQL must not change.
var migrations = []*gormigrate.Migration{
	{
		ID: "001_create_traces",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE traces (
					id TEXT PRIMARY KEY,
					name TEXT,
					tags_json TEXT,
					created_at DATETIME NOT NULL,
					ended_at DATETIME,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX idx_traces_tenant ON traces(tenant_key)`,
				`CREATE INDEX idx_traces_created_at ON traces(created_at)`,
			)
		},
	},
	{
		ID: "002_create_spans",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE spans (
					id TEXT PRIMARY KEY,
					trace_id TEXT NOT NULL,
					parent_id TEXT,
					name TEXT NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT '',

					kind_type TEXT NOT NULL,
					kind_path TEXT,
					kind_file_version TEXT,
					kind_bytes_read INTEGER,
					kind_bytes_written INTEGER,
					kind_model TEXT,
					kind_provider TEXT,
					kind_input_tokens INTEGER,
					kind_output_tokens INTEGER,
					kind_cost REAL,
					kind_input_preview TEXT,
					kind_output_preview TEXT,
					kind_subtype TEXT,
					kind_attrs_json TEXT,

					input_json TEXT,
					output_json TEXT,

					status_phase TEXT NOT NULL,
					status_started_at DATETIME NOT NULL,
					status_ended_at DATETIME,
					status_error TEXT
				)`,
				`CREATE INDEX idx_spans_trace_id ON spans(trace_id)`,
				`CREATE INDEX idx_spans_tenant ON spans(tenant_key)`,
				`CREATE INDEX idx_spans_kind_model ON spans(kind_model)`,
				`CREATE INDEX idx_spans_status_phase ON spans(status_phase)`,
				`CREATE INDEX idx_spans_started_at ON spans(status_started_at)`,
			)
		},
	},
	{
		ID: "003_create_file_registry",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE file_blobs (
					hash TEXT PRIMARY KEY,
					content BLOB NOT NULL,
					size INTEGER NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE TABLE file_versions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					hash TEXT NOT NULL,
					path TEXT NOT NULL,
					size INTEGER NOT NULL,
					created_at DATETIME NOT NULL,
					created_by_span_id TEXT,
					created_by_trace_id TEXT,
					operation TEXT NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX idx_file_versions_path ON file_versions(path)`,
				`CREATE INDEX idx_file_versions_hash ON file_versions(hash)`,
				`CREATE INDEX idx_file_versions_created_at ON file_versions(created_at)`,
				`CREATE TABLE tracked_files (
					path TEXT PRIMARY KEY,
					current_hash TEXT NOT NULL,
					version_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
			)
		},
	},
	{
		ID: "004_create_datasets",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE datasets (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE UNIQUE INDEX uk_datasets_name_tenant ON datasets(name, tenant_key)`,
				`CREATE TABLE datapoints (
					id TEXT PRIMARY KEY,
					dataset_id TEXT NOT NULL,
					kind TEXT NOT NULL,
					source TEXT NOT NULL,
					span_id TEXT,
					messages_json TEXT,
					expected_message_json TEXT,
					input_json TEXT,
					expected_output_json TEXT,
					actual_output_json TEXT,
					score REAL,
					metadata_json TEXT,
					created_at DATETIME NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX idx_datapoints_dataset_id ON datapoints(dataset_id)`,
			)
		},
	},
	{
		ID: "005_create_queue_items",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE queue_items (
					id TEXT PRIMARY KEY,
					dataset_id TEXT NOT NULL,
					datapoint_id TEXT NOT NULL,
					state TEXT NOT NULL,
					claimer TEXT,
					claimed_at DATETIME,
					original_data_json TEXT,
					edited_data_json TEXT,
					created_at DATETIME NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX idx_queue_items_dataset_status ON queue_items(dataset_id, state)`,
			)
		},
	},
}
