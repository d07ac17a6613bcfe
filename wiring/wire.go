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

//go:build wireinject
// +build wireinject

package wiring

import (
	"context"

	"github.com/google/wire"

	"github.com/tracewayhq/traceway/config"
	"github.com/tracewayhq/traceway/controllers"
	"github.com/tracewayhq/traceway/services"
)

var configProviderSet = wire.NewSet(
	ProvideConfigFromPtr,
)

var loggerProviderSet = wire.NewSet(
	ProvideLogger,
)

var storageProviderSet = wire.NewSet(
	ProvideStore,
	ProvideBus,
	ProvideFileRegistry,
	ProvideDataset,
	ProvideWSBridge,
)

var proxyProviderSet = wire.NewSet(
	ProvidePriceTable,
	ProvideProxy,
)

var serviceProviderSet = wire.NewSet(
	services.NewTraceService,
	services.NewSpanService,
	services.NewAnalyticsService,
	services.NewFileService,
	services.NewDatasetService,
)

var controllerProviderSet = wire.NewSet(
	controllers.NewTraceController,
	controllers.NewSpanController,
	controllers.NewAnalyticsController,
	controllers.NewFileController,
	controllers.NewEventController,
	controllers.NewDatasetController,
	controllers.NewQueueController,
	ProvideClock,
)

// InitializeAppParams builds the full dependency graph for a running
// Traceway process from configuration alone.
func InitializeAppParams(ctx context.Context, cfg *config.Config) (*AppParams, error) {
	wire.Build(
		configProviderSet,
		loggerProviderSet,
		storageProviderSet,
		proxyProviderSet,
		serviceProviderSet,
		controllerProviderSet,
		wire.Struct(new(AppParams), "*"),
	)
	return &AppParams{}, nil
}
