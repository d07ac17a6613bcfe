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

var migrations = []*gormigrate.Migration{
	{
		ID: "001_create_traces",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE IF NOT EXISTS traces (
					id UUID PRIMARY KEY,
					name TEXT,
					tags_json JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					ended_at TIMESTAMPTZ,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX IF NOT EXISTS idx_traces_tenant ON traces(tenant_key)`,
				`CREATE INDEX IF NOT EXISTS idx_traces_created_at ON traces(created_at)`,
			)
		},
	},
	{
		ID: "002_create_spans",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE IF NOT EXISTS spans (
					id UUID PRIMARY KEY,
					trace_id UUID NOT NULL,
					parent_id UUID,
					name TEXT NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT '',

					kind_type TEXT NOT NULL,
					kind_path TEXT,
					kind_file_version TEXT,
					kind_bytes_read BIGINT,
					kind_bytes_written BIGINT,
					kind_model TEXT,
					kind_provider TEXT,
					kind_input_tokens BIGINT,
					kind_output_tokens BIGINT,
					kind_cost DOUBLE PRECISION,
					kind_input_preview TEXT,
					kind_output_preview TEXT,
					kind_subtype TEXT,
					kind_attrs_json JSONB,

					input_json JSONB,
					output_json JSONB,

					status_phase TEXT NOT NULL,
					status_started_at TIMESTAMPTZ NOT NULL,
					status_ended_at TIMESTAMPTZ,
					status_error TEXT
				)`,
				`CREATE INDEX IF NOT EXISTS idx_spans_trace_id ON spans(trace_id)`,
				`CREATE INDEX IF NOT EXISTS idx_spans_tenant ON spans(tenant_key)`,
				`CREATE INDEX IF NOT EXISTS idx_spans_kind_model ON spans(kind_model)`,
				`CREATE INDEX IF NOT EXISTS idx_spans_status_phase ON spans(status_phase)`,
				`CREATE INDEX IF NOT EXISTS idx_spans_started_at ON spans(status_started_at)`,
			)
		},
	},
	{
		ID: "003_create_file_registry",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE IF NOT EXISTS file_versions (
					id BIGSERIAL PRIMARY KEY,
					hash TEXT NOT NULL,
					path TEXT NOT NULL,
					size BIGINT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					created_by_span_id UUID,
					created_by_trace_id UUID,
					operation TEXT NOT NULL,
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX IF NOT EXISTS idx_file_versions_path ON file_versions(path)`,
				`CREATE INDEX IF NOT EXISTS idx_file_versions_hash ON file_versions(hash)`,
				`CREATE TABLE IF NOT EXISTS tracked_files (
					path TEXT PRIMARY KEY,
					current_hash TEXT NOT NULL,
					version_count INT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
			)
		},
	},
	{
		ID: "004_create_datasets",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE IF NOT EXISTS datasets (
					id UUID PRIMARY KEY,
					name TEXT NOT NULL,
					description TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE UNIQUE INDEX IF NOT EXISTS uk_datasets_name_tenant ON datasets(name, tenant_key)`,
				`CREATE TABLE IF NOT EXISTS datapoints (
					id UUID PRIMARY KEY,
					dataset_id UUID NOT NULL,
					kind TEXT NOT NULL,
					source TEXT NOT NULL,
					span_id UUID,
					messages_json JSONB,
					expected_message_json JSONB,
					input_json JSONB,
					expected_output_json JSONB,
					actual_output_json JSONB,
					score DOUBLE PRECISION,
					metadata_json JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX IF NOT EXISTS idx_datapoints_dataset_id ON datapoints(dataset_id)`,
			)
		},
	},
	{
		ID: "005_create_queue_items",
		Migrate: func(tx *gorm.DB) error {
			return runSQL(tx,
				`CREATE TABLE IF NOT EXISTS queue_items (
					id UUID PRIMARY KEY,
					dataset_id UUID NOT NULL,
					datapoint_id UUID NOT NULL,
					state TEXT NOT NULL,
					claimer TEXT,
					claimed_at TIMESTAMPTZ,
					original_data_json JSONB,
					edited_data_json JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
					tenant_key TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX IF NOT EXISTS idx_queue_items_dataset_status ON queue_items(dataset_id, state)`,
			)
		},
	},
}
