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

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/tracewayhq/traceway/api"
	"github.com/tracewayhq/traceway/config"
	"github.com/tracewayhq/traceway/server"
	"github.com/tracewayhq/traceway/signals"
	"github.com/tracewayhq/traceway/wiring"
)

func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug", "DEBUG":
		level = slog.LevelDebug
	case "info", "INFO":
		level = slog.LevelInfo
	case "warn", "WARN":
		level = slog.LevelWarn
	case "error", "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	slog.Info("logger configured", "level", level.String())
}

func main() {
	cfg := config.GetConfig()

	setupLogger(cfg)

	if cfg.AutoMaxProcsEnabled {
		if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			slog.Info(fmt.Sprintf(format, args...))
		})); err != nil {
			slog.Error("failed to set GOMAXPROCS", "error", err)
			os.Exit(1)
		}
	}

	dependencies, err := wiring.InitializeAppParams(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize application dependencies", "error", err)
		os.Exit(1)
	}

	apiServer := server.New("api", server.Config{
		Addr:                cfg.API.Addr,
		ReadTimeoutSeconds:  cfg.API.ReadTimeoutSeconds,
		WriteTimeoutSeconds: cfg.API.WriteTimeoutSeconds,
		IdleTimeoutSeconds:  cfg.API.IdleTimeoutSeconds,
		MaxHeaderBytes:      cfg.API.MaxHeaderBytes,
	}, api.MakeHTTPHandler(dependencies))

	proxyServer := server.New("proxy", server.Config{
		Addr: cfg.Proxy.Addr,
	}, dependencies.Proxy)

	stopCh := signals.SetupSignalHandler()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		<-stopCh
		slog.Info("shutdown signal received, stopping servers")

		apiCtx, apiCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer apiCancel()
		if err := apiServer.Shutdown(apiCtx); err != nil {
			slog.Error("api server forced shutdown after timeout", "error", err)
		}

		proxyCtx, proxyCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer proxyCancel()
		if err := proxyServer.Shutdown(proxyCtx); err != nil {
			slog.Error("proxy server forced shutdown after timeout", "error", err)
		}
		wg.Done()
	}()

	go func() {
		slog.Info("llm proxy server is running", "address", proxyServer.Addr())
		if err := proxyServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start proxy server", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("api server is running", "address", apiServer.Addr())
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start api server", "error", err)
		os.Exit(1)
	}

	wg.Wait()
	slog.Info("all servers shut down successfully")
}
