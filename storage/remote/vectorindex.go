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
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	tracewaymodels "github.com/tracewayhq/traceway/models"
)

const spanClassName = "TracewaySpan"

// VectorIndex is a supplementary semantic index over one searchable text per
// span (an llm_call's input preview, an fs span's path, otherwise its name),
// held in the single TracewaySpan class with one weaviate tenant per tenant
// key (weaviate's native multi-tenancy). It is never
// the source of truth for a span — storage.Store's relational rows are —
// so index writes are best-effort and failures are logged, not propagated.
type VectorIndex struct {
	client *weaviate.Client
	logger *slog.Logger
}

// NewVectorIndex dials scheme://host using the v5 client, ensuring the
// TracewaySpan class exists with multi-tenancy enabled.
func NewVectorIndex(ctx context.Context, scheme, host string, logger *slog.Logger) (*VectorIndex, error) {
	client := weaviate.New(weaviate.Config{Scheme: scheme, Host: host})

	exists, err := client.Schema().ClassExistenceChecker().WithClassName(spanClassName).Do(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		class := &models.Class{
			Class:      spanClassName,
			Vectorizer: "none",
			MultiTenancyConfig: &models.MultiTenancyConfig{
				Enabled: true,
			},
			Properties: []*models.Property{
				{Name: "spanId", DataType: []string{"text"}},
				{Name: "traceId", DataType: []string{"text"}},
				{Name: "name", DataType: []string{"text"}},
				{Name: "text", DataType: []string{"text"}},
			},
		}
		if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			return nil, err
		}
	}

	return &VectorIndex{client: client, logger: logger}, nil
}

func (v *VectorIndex) ensureTenant(ctx context.Context, tenant string) {
	if tenant == "" {
		return
	}
	_ = v.client.Schema().TenantsCreator().
		WithClassName(spanClassName).
		WithTenants(models.Tenant{Name: tenant}).
		Do(ctx)
}

// IndexSpan upserts a searchable text object for a span. Best-effort: errors
// are logged and swallowed, since the vector index is a convenience
// projection, not authoritative state.
func (v *VectorIndex) IndexSpan(ctx context.Context, tenant string, span *tracewaymodels.Span, text string) {
	if v == nil {
		return
	}
	v.ensureTenant(ctx, tenant)

	props := map[string]any{
		"spanId":  span.ID.String(),
		"traceId": span.TraceID.String(),
		"name":    span.Name,
		"text":    text,
	}
	creator := v.client.Data().Creator().
		WithClassName(spanClassName).
		WithID(span.ID.String()).
		WithProperties(props)
	if tenant != "" {
		creator = creator.WithTenant(tenant)
	}
	if _, err := creator.Do(ctx); err != nil && v.logger != nil {
		v.logger.Warn("vector index upsert failed", "span_id", span.ID, "error", err)
	}
}

// SearchSimilar runs a keyword/near-text search (grounded on this client's
// GraphQL Get builder shape) scoped to tenant and returns matching span ids.
func (v *VectorIndex) SearchSimilar(ctx context.Context, tenant, query string, limit int) ([]uuid.UUID, error) {
	if v == nil {
		return nil, nil
	}
	nearText := v.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{query})
	getter := v.client.GraphQL().Get().
		WithClassName(spanClassName).
		WithNearText(nearText).
		WithLimit(limit).
		WithFields(graphql.Field{Name: "spanId"})
	if tenant != "" {
		getter = getter.WithTenant(tenant)
	}
	resp, err := getter.Do(ctx)
	if err != nil {
		return nil, err
	}
	return extractSpanIDs(resp), nil
}

// DeleteSpan removes the span's index entry.
func (v *VectorIndex) DeleteSpan(ctx context.Context, tenant string, id uuid.UUID) {
	if v == nil {
		return
	}
	deleter := v.client.Data().Deleter().WithClassName(spanClassName).WithID(id.String())
	if tenant != "" {
		deleter = deleter.WithTenant(tenant)
	}
	if err := deleter.Do(ctx); err != nil && v.logger != nil {
		v.logger.Warn("vector index delete failed", "span_id", id, "error", err)
	}
}

func extractSpanIDs(resp *models.GraphQLResponse) []uuid.UUID {
	if resp == nil || len(resp.Errors) > 0 {
		return nil
	}
	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil
	}
	items, ok := get[spanClassName].([]any)
	if !ok {
		return nil
	}
	var ids []uuid.UUID
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		raw, ok := obj["spanId"].(string)
		if !ok {
			continue
		}
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
