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

// Package wiring assembles the dependency graph: storage backend, event
// bus, file registry, dataset service, LLM proxy, the service layer, and
// the controllers built on top of them (spec.md §4, ambient stack item M).
package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/config"
	"github.com/tracewayhq/traceway/controllers"
	"github.com/tracewayhq/traceway/dataset"
	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/fileregistry"
	"github.com/tracewayhq/traceway/ids"
	"github.com/tracewayhq/traceway/proxy"
	"github.com/tracewayhq/traceway/services"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/storage/embedded"
	"github.com/tracewayhq/traceway/storage/remote"
	"github.com/tracewayhq/traceway/wsbridge"
)

// AppParams contains all wired application dependencies.
type AppParams struct {
	Config *config.Config
	Logger *slog.Logger

	Store    storage.Store
	Bus      *eventbus.Bus
	Files    *fileregistry.Registry
	Datasets *dataset.Service
	Proxy    *proxy.Proxy
	WSBridge *wsbridge.Bridge

	TraceService     services.TraceService
	SpanService      services.SpanService
	AnalyticsService services.AnalyticsService
	FileService      services.FileService
	DatasetService   services.DatasetService

	TraceController     controllers.TraceController
	SpanController      controllers.SpanController
	FileController      controllers.FileController
	AnalyticsController controllers.AnalyticsController
	EventController     controllers.EventController
	DatasetController   controllers.DatasetController
	QueueController     controllers.QueueController
}

// ProvideConfigFromPtr dereferences the process-wide *config.Config so it
// can be injected by value into providers that only need to read it.
func ProvideConfigFromPtr(cfg *config.Config) config.Config {
	return *cfg
}

// ProvideLogger provides the configured slog.Logger instance. main sets
// slog.SetDefault before building the dependency graph, so this just
// resolves to the already-configured handler.
func ProvideLogger() *slog.Logger {
	return slog.Default()
}

// ProvideStore opens the storage backend selected by cfg.Storage.Backend
// (spec.md §4.C, §6 "storage.backend").
func ProvideStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "embedded":
		return embedded.Open(cfg.Storage.DBPath, logger)
	case "remote":
		return remote.Open(ctx, remote.Config{
			PostgresDSN:   cfg.Storage.PostgresDSN,
			BlobBaseURL:   cfg.Storage.BlobBaseURL,
			WeaviateHost:  cfg.Storage.WeaviateHost,
			WeaviateHTTPS: cfg.Storage.WeaviateHTTPS,
		}, logger)
	default:
		return nil, fmt.Errorf("wiring: unknown storage backend %q", cfg.Storage.Backend)
	}
}

// ProvidePriceTable converts the per-1k-token prices read from
// configuration into the per-token prices proxy.Proxy charges against
// (spec.md §6 "pricing.<model>": input_per_1k / output_per_1k).
func ProvidePriceTable(cfg config.Config) proxy.PriceTable {
	table := make(proxy.PriceTable, len(cfg.Pricing))
	for model, price := range cfg.Pricing {
		table[model] = proxy.ModelPrice{
			InputPerToken:  price.InputPer1K / 1000.0,
			OutputPerToken: price.OutputPer1K / 1000.0,
		}
	}
	return table
}

// proxyTraceHeader lets a caller pin a proxied request to a trace it already
// owns; absent or invalid, each request opens its own trace, since a trace
// is implicitly created on first reference (spec.md §3 "Trace").
const proxyTraceHeader = "X-Trace-Id"

func traceIDForRequest(r *http.Request) uuid.UUID {
	if raw := r.Header.Get(proxyTraceHeader); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
	}
	return uuid.New()
}

// ProvideProxy builds the transparent LLM reverse proxy (spec.md §4.H).
func ProvideProxy(cfg config.Config, store storage.Store, prices proxy.PriceTable, logger *slog.Logger) (*proxy.Proxy, error) {
	target, err := url.Parse(cfg.Proxy.Target)
	if err != nil {
		return nil, fmt.Errorf("wiring: invalid proxy.target %q: %w", cfg.Proxy.Target, err)
	}
	return proxy.New(target, store, prices, logger, traceIDForRequest), nil
}

// ProvideBus constructs the process-wide event bus (spec.md §4.F).
func ProvideBus(logger *slog.Logger) *eventbus.Bus {
	return eventbus.New(logger)
}

// ProvideFileRegistry constructs the file-version registry (spec.md §4.G).
func ProvideFileRegistry(store storage.Store, bus *eventbus.Bus) *fileregistry.Registry {
	return fileregistry.New(store, bus)
}

// ProvideDataset constructs the dataset/annotation-queue service (spec.md
// §4.J).
func ProvideDataset(store storage.Store, bus *eventbus.Bus) *dataset.Service {
	return dataset.New(store, bus)
}

// allowAnyOrigin permits the websocket bridge's upgrade handshake from any
// origin; the tenant/auth layer sitting in front of the core is responsible
// for access control (spec.md §1).
func allowAnyOrigin(*http.Request) bool { return true }

// ProvideWSBridge constructs the websocket enrichment for the live event
// stream (spec.md §4.F, §4.I).
func ProvideWSBridge(bus *eventbus.Bus, logger *slog.Logger) *wsbridge.Bridge {
	return wsbridge.New(bus, logger, allowAnyOrigin)
}

// ProvideClock provides the production clock used by the filter DSL parser
// reached through SpanController.
func ProvideClock() ids.Clock {
	return ids.SystemClock{}
}
