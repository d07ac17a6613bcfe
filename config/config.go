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

// Version is overridden at build time via -ldflags.
var Version = "dev"

// Config holds all configuration for the application (spec.md §6,
// "Configuration (recognized options)").
type Config struct {
	PackageVersion      string
	LogLevel            string
	AutoMaxProcsEnabled bool
	CORSAllowedOrigin   string

	API     APIServerConfig
	Proxy   ProxyConfig
	Storage StorageConfig
	Pricing map[string]ModelPrice
}

// APIServerConfig is the REST/SSE/websocket-bridge server (spec.md §6,
// "api.addr").
type APIServerConfig struct {
	Addr                string
	ReadTimeoutSeconds  int
	WriteTimeoutSeconds int
	IdleTimeoutSeconds  int
	MaxHeaderBytes      int
}

// ProxyConfig is the transparent LLM reverse proxy (spec.md §4.H, §6
// "proxy.addr" / "proxy.target").
type ProxyConfig struct {
	Addr   string
	Target string
}

// StorageConfig selects and configures the embedded or remote storage
// backend (spec.md §4.C, §6 "storage.backend" / "storage.db_path" /
// "storage.namespace").
type StorageConfig struct {
	Backend   string // "embedded" | "remote"
	DBPath    string // embedded mode: sqlite DSN / file path
	Namespace string // remote mode: "{tenant}.{entity}" namespace prefix

	PostgresDSN   string
	BlobBaseURL   string
	WeaviateHost  string
	WeaviateHTTPS bool
}

// ModelPrice is the per-1k-token price for one "provider/model" key
// (spec.md §6 "pricing.<model>").
type ModelPrice struct {
	InputPer1K  float64
	OutputPer1K float64
}
