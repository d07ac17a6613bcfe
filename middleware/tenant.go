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

package middleware

import (
	"net/http"

	"github.com/tracewayhq/traceway/storage"
)

// TenantHeader is the header the cloud auth/org layer is expected to set
// once it has authenticated the caller; the core consumes only this value
// and trusts nothing else about identity (spec.md §1). Absent in embedded
// mode, where every request runs under the empty tenant key.
const TenantHeader = "X-Tenant-Id"

// TenantKey attaches the tenant key from TenantHeader to the request
// context as storage.TenantFromContext expects.
func TenantKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := storage.WithTenant(r.Context(), r.Header.Get(TenantHeader))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
