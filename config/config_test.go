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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig_RejectsUnknownBackend(t *testing.T) {
	r := &configReader{}
	validateConfig(&Config{
		Storage: StorageConfig{Backend: "bogus"},
		API:     APIServerConfig{ReadTimeoutSeconds: 1, WriteTimeoutSeconds: 1, MaxHeaderBytes: 2048},
	}, r)
	assert.Len(t, r.errors, 1)
}

func TestValidateConfig_RemoteRequiresPostgresDSN(t *testing.T) {
	r := &configReader{}
	validateConfig(&Config{
		Storage: StorageConfig{Backend: "remote"},
		API:     APIServerConfig{ReadTimeoutSeconds: 1, WriteTimeoutSeconds: 1, MaxHeaderBytes: 2048},
	}, r)
	assert.Len(t, r.errors, 1)
}

func TestValidateConfig_AcceptsValidEmbeddedConfig(t *testing.T) {
	r := &configReader{}
	validateConfig(&Config{
		Storage: StorageConfig{Backend: "embedded"},
		API:     APIServerConfig{ReadTimeoutSeconds: 10, WriteTimeoutSeconds: 90, MaxHeaderBytes: 65536},
	}, r)
	assert.Empty(t, r.errors)
}

func TestReadOptionalPricingTable_ParsesInputOutputPer1K(t *testing.T) {
	r := &configReader{}
	t.Setenv("PRICING_JSON", `{"openai/gpt-4":{"input_per_1k":0.03,"output_per_1k":0.06}}`)

	table := r.readOptionalPricingTable("PRICING_JSON")

	assert.Empty(t, r.errors)
	assert.Equal(t, ModelPrice{InputPer1K: 0.03, OutputPer1K: 0.06}, table["openai/gpt-4"])
}

func TestReadOptionalPricingTable_RecordsErrorOnMalformedJSON(t *testing.T) {
	r := &configReader{}
	t.Setenv("PRICING_JSON", `not json`)

	table := r.readOptionalPricingTable("PRICING_JSON")

	assert.Empty(t, table)
	assert.Len(t, r.errors, 1)
}
