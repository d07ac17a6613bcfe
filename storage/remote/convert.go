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
	"encoding/json"
	"strings"

	"github.com/tracewayhq/traceway/models"
)

func rowToTrace(r traceRow) *models.Trace {
	var tags []string
	_ = json.Unmarshal([]byte(r.TagsJSON), &tags)
	return &models.Trace{ID: r.ID, Name: r.Name, Tags: tags, CreatedAt: r.CreatedAt, EndedAt: r.EndedAt, TenantKey: r.TenantKey}
}

func spanToRow(s *models.Span, tenantKey string) spanRow {
	return spanRow{
		ID: s.ID, TraceID: s.TraceID, ParentID: s.ParentID, Name: s.Name, TenantKey: tenantKey,
		KindType: string(s.Kind.Type), KindPath: s.Kind.Path, KindFileVersion: s.Kind.FileVersion,
		KindBytesRead: s.Kind.BytesRead, KindBytesWritten: s.Kind.BytesWritten,
		KindModel: s.Kind.Model, KindProvider: s.Kind.Provider,
		KindInputTokens: s.Kind.InputTokens, KindOutputTokens: s.Kind.OutputTokens, KindCost: s.Kind.Cost,
		KindInputPreview: s.Kind.InputPreview, KindOutputPreview: s.Kind.OutputPreview,
		KindSubtype: s.Kind.Subtype, KindAttrsJSON: string(mustJSON(s.Kind.Attributes)),
		InputJSON: string(mustJSON(s.Input)), OutputJSON: string(mustJSON(s.Output)),
		StatusPhase: string(s.Status.Phase), StatusStartedAt: s.Status.StartedAt,
		StatusEndedAt: s.Status.EndedAt, StatusError: s.Status.Error,
	}
}

func rowToSpan(r spanRow) *models.Span {
	var input, output any
	_ = json.Unmarshal([]byte(r.InputJSON), &input)
	_ = json.Unmarshal([]byte(r.OutputJSON), &output)
	var attrs map[string]any
	if r.KindAttrsJSON != "" {
		_ = json.Unmarshal([]byte(r.KindAttrsJSON), &attrs)
	}
	return &models.Span{
		ID: r.ID, TraceID: r.TraceID, ParentID: r.ParentID, Name: r.Name, TenantKey: r.TenantKey,
		Kind: models.SpanKind{
			Type: models.SpanKindType(r.KindType), Path: r.KindPath, FileVersion: r.KindFileVersion,
			BytesRead: r.KindBytesRead, BytesWritten: r.KindBytesWritten,
			Model: r.KindModel, Provider: r.KindProvider,
			InputTokens: r.KindInputTokens, OutputTokens: r.KindOutputTokens, Cost: r.KindCost,
			InputPreview: r.KindInputPreview, OutputPreview: r.KindOutputPreview,
			Subtype: r.KindSubtype, Attributes: attrs,
		},
		Input: input, Output: output,
		Status: models.Status{Phase: models.StatusPhase(r.StatusPhase), StartedAt: r.StatusStartedAt, EndedAt: r.StatusEndedAt, Error: r.StatusError},
	}
}

func rowToDataset(r datasetRow) *models.Dataset {
	return &models.Dataset{ID: r.ID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, TenantKey: r.TenantKey}
}

func datapointToRow(dp *models.Datapoint) datapointRow {
	return datapointRow{
		ID: dp.ID, DatasetID: dp.DatasetID, Kind: string(dp.Kind), Source: string(dp.Source), SpanID: dp.SpanID,
		MessagesJSON: string(mustJSON(dp.Messages)), ExpectedMessageJSON: string(mustJSON(dp.ExpectedMessage)),
		InputJSON: string(mustJSON(dp.Input)), ExpectedOutputJSON: string(mustJSON(dp.ExpectedOutput)),
		ActualOutputJSON: string(mustJSON(dp.ActualOutput)), Score: dp.Score,
		MetadataJSON: string(mustJSON(dp.Metadata)), CreatedAt: dp.CreatedAt, TenantKey: dp.TenantKey,
	}
}

func rowToDatapoint(r datapointRow) *models.Datapoint {
	dp := &models.Datapoint{ID: r.ID, DatasetID: r.DatasetID, Kind: models.DatapointKind(r.Kind), Source: models.DatapointSource(r.Source), SpanID: r.SpanID, Score: r.Score, CreatedAt: r.CreatedAt, TenantKey: r.TenantKey}
	_ = json.Unmarshal([]byte(r.MessagesJSON), &dp.Messages)
	_ = json.Unmarshal([]byte(r.ExpectedMessageJSON), &dp.ExpectedMessage)
	_ = json.Unmarshal([]byte(r.InputJSON), &dp.Input)
	_ = json.Unmarshal([]byte(r.ExpectedOutputJSON), &dp.ExpectedOutput)
	_ = json.Unmarshal([]byte(r.ActualOutputJSON), &dp.ActualOutput)
	_ = json.Unmarshal([]byte(r.MetadataJSON), &dp.Metadata)
	return dp
}

func rowToQueueItem(r queueItemRow) *models.QueueItem {
	item := &models.QueueItem{ID: r.ID, DatasetID: r.DatasetID, DatapointID: r.DatapointID, State: models.QueueState(r.State), Claimer: r.Claimer, ClaimedAt: r.ClaimedAt, CreatedAt: r.CreatedAt, TenantKey: r.TenantKey}
	_ = json.Unmarshal([]byte(r.OriginalDataJSON), &item.OriginalData)
	if r.EditedDataJSON != "" {
		_ = json.Unmarshal([]byte(r.EditedDataJSON), &item.EditedData)
	}
	return item
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate key value") || strings.Contains(err.Error(), "UNIQUE constraint"))
}
