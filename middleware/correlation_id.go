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

// Package middleware holds the cross-cutting HTTP concerns composed around
// the API mux (spec.md §4.I / ambient stack item L): panic recovery, CORS,
// correlation IDs, and tenant-key extraction.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CorrelationIDHeader is the header a caller may set to propagate its own
// correlation ID; one is generated when absent.
const CorrelationIDHeader = "X-Correlation-Id"

type correlationIDKeyType struct{}

// AddCorrelationID attaches a correlation ID to the request context and
// echoes it back on the response, generating one when the caller supplies
// none.
func AddCorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(CorrelationIDHeader, id)
			ctx := context.WithValue(r.Context(), correlationIDKeyType{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CorrelationIDFromContext returns the correlation ID attached by
// AddCorrelationID, or "" if the middleware was not applied.
func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDKeyType{}).(string); ok {
		return v
	}
	return ""
}
