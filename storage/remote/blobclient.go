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

package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tracewayhq/traceway/tracewayerr"
)

// BlobClient stores and fetches content-addressed file blobs against a
// companion object-storage service fronted by plain HTTP PUT/GET, with
// connection-level retry via go-retryablehttp. This is distinct from the
// store-level "no automatic retry of business operations" rule (spec.md §7):
// a dropped TCP connection to the configured backend is a transport fault,
// not a failed CreateSpan/CompleteSpan/etc. call.
type BlobClient struct {
	baseURL string
	client  *retryablehttp.Client
}

// NewBlobClient builds a BlobClient against baseURL (e.g.
// "https://blobs.internal.example.com"). logger receives retry diagnostics.
func NewBlobClient(baseURL string, logger *slog.Logger) *BlobClient {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	if logger != nil {
		c.Logger = slogAdapter{logger}
	} else {
		c.Logger = nil
	}
	return &BlobClient{baseURL: baseURL, client: c}
}

// Put uploads content under hash, creating it if absent. The backend is
// expected to treat the hash as a content address and accept re-puts as
// idempotent no-ops.
func (b *BlobClient) Put(ctx context.Context, hash string, content []byte) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, b.baseURL+"/blobs/"+hash, bytes.NewReader(content))
	if err != nil {
		return tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, fmt.Errorf("blob put: unexpected status %d", resp.StatusCode))
	}
	return nil
}

// Get fetches the blob stored under hash.
func (b *BlobClient) Get(ctx context.Context, hash string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/blobs/"+hash, nil)
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindInternal, err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, tracewayerr.ErrFileNotFound
	}
	if resp.StatusCode >= 300 {
		return nil, tracewayerr.Wrap(tracewayerr.KindStorageUnavailable, fmt.Errorf("blob get: unexpected status %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

// slogAdapter satisfies retryablehttp.LeveledLogger against a slog.Logger.
type slogAdapter struct{ l *slog.Logger }

func (a slogAdapter) Error(msg string, kv ...any) { a.l.Error(msg, kv...) }
func (a slogAdapter) Info(msg string, kv ...any)  { a.l.Info(msg, kv...) }
func (a slogAdapter) Debug(msg string, kv ...any) { a.l.Debug(msg, kv...) }
func (a slogAdapter) Warn(msg string, kv ...any)  { a.l.Warn(msg, kv...) }
