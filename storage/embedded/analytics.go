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

package embedded

import (
	"context"

	"github.com/tracewayhq/traceway/analytics"
	"github.com/tracewayhq/traceway/storage"
	"github.com/tracewayhq/traceway/tracewayerr"
)

func runAnalytics(ctx context.Context, s *Store, q storage.AnalyticsQuery) (*storage.AnalyticsResult, error) {
	spans, err := s.ListSpans(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	result, err := analytics.Compute(spans, q.GroupBy, q.Metrics)
	if err != nil {
		return nil, tracewayerr.ErrUnsupportedMetric
	}
	return result, nil
}
