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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var config *Config

// GetConfig returns the process-wide configuration loaded at init.
func GetConfig() *Config {
	return config
}

func init() {
	loadEnvs()
}

func loadEnvs() {
	config = &Config{}

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			panic(err)
		}
	}

	r := &configReader{}

	config.PackageVersion = r.readOptionalString("TRACEWAY_VERSION", Version)
	config.LogLevel = r.readOptionalString("LOG_LEVEL", "info")
	config.AutoMaxProcsEnabled = r.readOptionalBool("AUTO_MAX_PROCS_ENABLED", true)
	config.CORSAllowedOrigin = r.readOptionalString("CORS_ALLOWED_ORIGIN", "*")

	config.API = APIServerConfig{
		Addr:                r.readOptionalString("API_ADDR", "127.0.0.1:3000"),
		ReadTimeoutSeconds:  int(r.readOptionalInt64("API_READ_TIMEOUT_SECONDS", 10)),
		WriteTimeoutSeconds: int(r.readOptionalInt64("API_WRITE_TIMEOUT_SECONDS", 90)),
		IdleTimeoutSeconds:  int(r.readOptionalInt64("API_IDLE_TIMEOUT_SECONDS", 60)),
		MaxHeaderBytes:      int(r.readOptionalInt64("API_MAX_HEADER_BYTES", 65536)),
	}

	config.Proxy = ProxyConfig{
		Addr:   r.readOptionalString("PROXY_ADDR", "127.0.0.1:3001"),
		Target: r.readOptionalString("PROXY_TARGET", ""),
	}

	config.Storage = StorageConfig{
		Backend:       r.readOptionalString("STORAGE_BACKEND", "embedded"),
		DBPath:        r.readOptionalString("STORAGE_DB_PATH", "traceway.db"),
		Namespace:     r.readOptionalString("STORAGE_NAMESPACE", "default"),
		PostgresDSN:   r.readOptionalString("STORAGE_POSTGRES_DSN", ""),
		BlobBaseURL:   r.readOptionalString("STORAGE_BLOB_BASE_URL", ""),
		WeaviateHost:  r.readOptionalString("STORAGE_WEAVIATE_HOST", ""),
		WeaviateHTTPS: r.readOptionalBool("STORAGE_WEAVIATE_HTTPS", false),
	}

	config.Pricing = r.readOptionalPricingTable("PRICING_JSON")

	validateConfig(config, r)

	r.logAndExitIfErrorsFound()

	slog.Info("configReader: configs loaded", "storageBackend", config.Storage.Backend)
}

func validateConfig(cfg *Config, r *configReader) {
	if cfg.Storage.Backend != "embedded" && cfg.Storage.Backend != "remote" {
		r.errors = append(r.errors, fmt.Errorf("STORAGE_BACKEND must be \"embedded\" or \"remote\", got %q", cfg.Storage.Backend))
	}
	if cfg.Storage.Backend == "remote" && cfg.Storage.PostgresDSN == "" {
		r.errors = append(r.errors, fmt.Errorf("STORAGE_POSTGRES_DSN is required when STORAGE_BACKEND=remote"))
	}
	if cfg.API.ReadTimeoutSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("API_READ_TIMEOUT_SECONDS must be greater than 0, got %d", cfg.API.ReadTimeoutSeconds))
	}
	if cfg.API.WriteTimeoutSeconds <= 0 {
		r.errors = append(r.errors, fmt.Errorf("API_WRITE_TIMEOUT_SECONDS must be greater than 0, got %d", cfg.API.WriteTimeoutSeconds))
	}
	if cfg.API.MaxHeaderBytes < 1024 {
		r.errors = append(r.errors, fmt.Errorf("API_MAX_HEADER_BYTES must be at least 1024, got %d", cfg.API.MaxHeaderBytes))
	}
}

// configReader collects env-parsing errors instead of panicking mid-load, so
// every misconfigured key is reported together (spec.md §6 exit code 2).
type configReader struct {
	errors []error
}

func (r *configReader) readOptionalString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (r *configReader) readOptionalBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errors = append(r.errors, fmt.Errorf("%s: invalid bool %q: %w", key, v, err))
		return def
	}
	return b
}

func (r *configReader) readOptionalInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.errors = append(r.errors, fmt.Errorf("%s: invalid integer %q: %w", key, v, err))
		return def
	}
	return n
}

// readOptionalPricingTable parses a JSON object of "provider/model" ->
// {input_per_1k, output_per_1k}, collapsing spec.md §6's dynamic
// "pricing.<model>" key family into a single env var since arbitrary-keyed
// env vars can't be declared ahead of time.
func (r *configReader) readOptionalPricingTable(key string) map[string]ModelPrice {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return map[string]ModelPrice{}
	}
	var raw map[string]struct {
		InputPer1K  float64 `json:"input_per_1k"`
		OutputPer1K float64 `json:"output_per_1k"`
	}
	if err := json.Unmarshal([]byte(v), &raw); err != nil {
		r.errors = append(r.errors, fmt.Errorf("%s: invalid pricing JSON: %w", key, err))
		return map[string]ModelPrice{}
	}
	table := make(map[string]ModelPrice, len(raw))
	for k, v := range raw {
		table[k] = ModelPrice{InputPer1K: v.InputPer1K, OutputPer1K: v.OutputPer1K}
	}
	return table
}

func (r *configReader) logAndExitIfErrorsFound() {
	if len(r.errors) == 0 {
		return
	}
	for _, err := range r.errors {
		slog.Error("configuration error", "error", err)
	}
	os.Exit(2)
}
