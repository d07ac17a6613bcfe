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

package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/tracewayhq/traceway/eventbus"
	"github.com/tracewayhq/traceway/models"
)

// ImportFormat names the supported ingest encodings (spec.md §4.J).
type ImportFormat string

const (
	FormatJSON  ImportFormat = "json"  // a single JSON array of objects
	FormatJSONL ImportFormat = "jsonl" // one JSON object per line
	FormatCSV   ImportFormat = "csv"   // header row + data rows
)

// Import decodes r in format and creates one generic Datapoint per record
// in datasetID, returning the created datapoints in source order. A
// malformed record aborts the whole import — partial ingest would leave
// the dataset in a state the caller did not ask for.
func (s *Service) Import(ctx context.Context, datasetID uuid.UUID, format ImportFormat, r io.Reader) ([]*models.Datapoint, error) {
	if _, err := s.store.GetDataset(ctx, datasetID); err != nil {
		return nil, err
	}

	var records []map[string]any
	var err error
	switch format {
	case FormatJSON:
		records, err = decodeJSONArray(r)
	case FormatJSONL:
		records, err = decodeJSONL(r)
	case FormatCSV:
		records, err = decodeCSV(r)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*models.Datapoint, 0, len(records))
	for _, rec := range records {
		dp := recordToDatapoint(datasetID, rec)
		created, err := s.store.CreateDatapoint(ctx, dp)
		if err != nil {
			return nil, err
		}
		s.publish(eventbus.EventDatapointCreated, created.ID, created)
		out = append(out, created)
	}
	return out, nil
}

func decodeJSONArray(r io.Reader) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding json array: %w", err)
	}
	return records, nil
}

func decodeJSONL(r io.Reader) ([]map[string]any, error) {
	var records []map[string]any
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decoding jsonl line: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeCSV(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	var records []map[string]any
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}
		rec := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[strings.TrimSpace(col)] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// recordToDatapoint maps known columns onto the generic Datapoint shape;
// unrecognized columns aggregate into Metadata (spec.md §4.J).
func recordToDatapoint(datasetID uuid.UUID, rec map[string]any) *models.Datapoint {
	dp := &models.Datapoint{
		DatasetID: datasetID,
		Kind:      models.DatapointGeneric,
		Source:    models.SourceFileUpload,
		Metadata:  map[string]any{},
	}
	for k, v := range rec {
		switch k {
		case "input":
			dp.Input = v
		case "expectedOutput":
			dp.ExpectedOutput = v
		case "actualOutput":
			dp.ActualOutput = v
		case "score":
			if f, ok := toFloat(v); ok {
				dp.Score = &f
			}
		default:
			dp.Metadata[k] = v
		}
	}
	if len(dp.Metadata) == 0 {
		dp.Metadata = nil
	}
	return dp
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%g", &f); err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
