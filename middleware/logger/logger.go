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

// Package logger provides request-scoped structured logging, stamping
// every log line emitted during a request with its correlation ID and the
// tenant key already on the request context when RequestLogger runs
// (spec.md ambient stack item L). In api.MakeHTTPHandler the tenant-key
// middleware runs after this one, so the stamped tenant there is empty.
package logger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tracewayhq/traceway/middleware"
	"github.com/tracewayhq/traceway/storage"
)

type loggerKeyType struct{}

// RequestLogger attaches a request-scoped *slog.Logger to the context
// (retrievable via GetLogger) and logs the request's method, path, status
// and duration once it completes.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestLogger := base.With(
				"correlationID", middleware.CorrelationIDFromContext(r.Context()),
				"tenant", storage.TenantFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ctx := context.WithValue(r.Context(), loggerKeyType{}, requestLogger)

			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			requestLogger.Info("request completed",
				"status", rec.statusCode,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// GetLogger returns the request-scoped logger attached by RequestLogger, or
// slog.Default() if the middleware was not applied.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKeyType{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
