// Package analytics computes grouped span metrics over a filtered span set
// (spec.md §4.E). It is backend-agnostic: callers hand it the spans a Store
// already filtered, and it performs the aggregation client-side.
package analytics

import (
	"fmt"
	"sort"

	"github.com/tracewayhq/traceway/models"
	"github.com/tracewayhq/traceway/storage"
)

// Metric names recognized by Compute.
const (
	MetricTotalCost         = "total_cost"
	MetricTotalInputTokens  = "total_input_tokens"
	MetricTotalOutputTokens = "total_output_tokens"
	MetricTotalTokens       = "total_tokens"
	MetricAvgLatencyMs      = "avg_latency_ms"
	MetricSpanCount         = "span_count"
	MetricErrorCount        = "error_count"
)

// Dimension names recognized as group_by keys.
const (
	DimModel    = "model"
	DimProvider = "provider"
	DimKind     = "kind"
	DimStatus   = "status"
	DimTrace    = "trace"
	DimDay      = "day"
	DimHour     = "hour"
)

var validMetrics = map[string]bool{
	MetricTotalCost: true, MetricTotalInputTokens: true, MetricTotalOutputTokens: true,
	MetricTotalTokens: true, MetricAvgLatencyMs: true, MetricSpanCount: true, MetricErrorCount: true,
}

var validDimensions = map[string]bool{
	DimModel: true, DimProvider: true, DimKind: true, DimStatus: true,
	DimTrace: true, DimDay: true, DimHour: true,
}

// Compute groups spans by groupBy and computes metrics for each group plus
// the grand totals, per spec.md §4.E.
func Compute(spans []*models.Span, groupBy, metrics []string) (*storage.AnalyticsResult, error) {
	for _, m := range metrics {
		if !validMetrics[m] {
			return nil, fmt.Errorf("unsupported metric %q", m)
		}
	}
	for _, d := range groupBy {
		if !validDimensions[d] {
			return nil, fmt.Errorf("unsupported group_by dimension %q", d)
		}
	}

	type bucket struct {
		key   map[string]string
		id    string
		spans []*models.Span
	}
	order := []string{}
	buckets := map[string]*bucket{}

	for _, s := range spans {
		key := groupKey(s, groupBy)
		id := keyID(key, groupBy)
		b, ok := buckets[id]
		if !ok {
			b = &bucket{key: key, id: id}
			buckets[id] = b
			order = append(order, id)
		}
		b.spans = append(b.spans, s)
	}

	// Groups sort descending by span_count, then ascending by key, ties
	// broken lexicographically (spec.md §4.E).
	sort.Slice(order, func(i, j int) bool {
		bi, bj := buckets[order[i]], buckets[order[j]]
		if len(bi.spans) != len(bj.spans) {
			return len(bi.spans) > len(bj.spans)
		}
		return bi.id < bj.id
	})

	result := &storage.AnalyticsResult{
		Totals: computeMetrics(spans, metrics),
	}
	for _, id := range order {
		b := buckets[id]
		result.Groups = append(result.Groups, storage.AnalyticsGroup{
			Key:     b.key,
			Metrics: computeMetrics(b.spans, metrics),
		})
	}
	return result, nil
}

func groupKey(s *models.Span, groupBy []string) map[string]string {
	key := make(map[string]string, len(groupBy))
	for _, d := range groupBy {
		switch d {
		case DimModel:
			key[d] = s.Kind.Model
		case DimProvider:
			if s.Kind.Provider != nil {
				key[d] = *s.Kind.Provider
			}
		case DimKind:
			key[d] = string(s.Kind.Type)
		case DimStatus:
			key[d] = string(s.Status.Phase)
		case DimTrace:
			key[d] = s.TraceID.String()
		case DimDay:
			key[d] = s.Status.StartedAt.UTC().Format("2006-01-02")
		case DimHour:
			key[d] = s.Status.StartedAt.UTC().Format("2006-01-02T15")
		}
	}
	return key
}

func keyID(key map[string]string, groupBy []string) string {
	id := ""
	for _, d := range groupBy {
		id += d + "=" + key[d] + "\x00"
	}
	return id
}

func computeMetrics(spans []*models.Span, metrics []string) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		switch m {
		case MetricTotalCost:
			out[m] = sumCost(spans)
		case MetricTotalInputTokens:
			out[m] = float64(sumInputTokens(spans))
		case MetricTotalOutputTokens:
			out[m] = float64(sumOutputTokens(spans))
		case MetricTotalTokens:
			out[m] = float64(sumInputTokens(spans) + sumOutputTokens(spans))
		case MetricAvgLatencyMs:
			out[m] = avgLatencyMs(spans)
		case MetricSpanCount:
			out[m] = float64(len(spans))
		case MetricErrorCount:
			out[m] = float64(countErrors(spans))
		}
	}
	return out
}

func sumCost(spans []*models.Span) float64 {
	var total float64
	for _, s := range spans {
		if s.Kind.Type == models.SpanKindLLMCall && s.Kind.Cost != nil {
			total += *s.Kind.Cost
		}
	}
	return total
}

func sumInputTokens(spans []*models.Span) int64 {
	var total int64
	for _, s := range spans {
		if s.Kind.Type == models.SpanKindLLMCall && s.Kind.InputTokens != nil {
			total += *s.Kind.InputTokens
		}
	}
	return total
}

func sumOutputTokens(spans []*models.Span) int64 {
	var total int64
	for _, s := range spans {
		if s.Kind.Type == models.SpanKindLLMCall && s.Kind.OutputTokens != nil {
			total += *s.Kind.OutputTokens
		}
	}
	return total
}

// avgLatencyMs means ended_at−started_at over completed spans; running
// spans are skipped (spec.md §4.E).
func avgLatencyMs(spans []*models.Span) float64 {
	var total float64
	var n int
	for _, s := range spans {
		if s.Status.Phase != models.StatusCompleted || s.Status.EndedAt == nil {
			continue
		}
		total += float64(s.Status.EndedAt.Sub(s.Status.StartedAt).Milliseconds())
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func countErrors(spans []*models.Span) int {
	var n int
	for _, s := range spans {
		if s.Status.Phase == models.StatusFailed {
			n++
		}
	}
	return n
}

// ModelTotal is one row of a cost_by_model or tokens_by_model projection.
type ModelTotal struct {
	Model string  `json:"model"`
	Value float64 `json:"value"`
}

// Summary is the fixed projection returned by the summary endpoint
// (spec.md §4.E): totals plus per-model cost/token breakdowns and the
// distinct models/providers seen, each sorted.
type Summary struct {
	Totals         map[string]float64 `json:"totals"`
	CostByModel    []ModelTotal        `json:"costByModel"`
	TokensByModel  []ModelTotal        `json:"tokensByModel"`
	ModelsUsed     []string            `json:"modelsUsed"`
	ProvidersUsed  []string            `json:"providersUsed"`
}

// ComputeSummary builds the fixed summary projection over spans.
func ComputeSummary(spans []*models.Span) *Summary {
	costByModel := map[string]float64{}
	tokensByModel := map[string]float64{}
	modelsSeen := map[string]bool{}
	providersSeen := map[string]bool{}

	for _, s := range spans {
		if s.Kind.Type != models.SpanKindLLMCall {
			continue
		}
		if s.Kind.Model != "" {
			modelsSeen[s.Kind.Model] = true
		}
		if s.Kind.Provider != nil && *s.Kind.Provider != "" {
			providersSeen[*s.Kind.Provider] = true
		}
		if s.Kind.Cost != nil {
			costByModel[s.Kind.Model] += *s.Kind.Cost
		}
		var tokens int64
		if s.Kind.InputTokens != nil {
			tokens += *s.Kind.InputTokens
		}
		if s.Kind.OutputTokens != nil {
			tokens += *s.Kind.OutputTokens
		}
		tokensByModel[s.Kind.Model] += float64(tokens)
	}

	summary := &Summary{
		Totals: computeMetrics(spans, []string{
			MetricTotalCost, MetricTotalInputTokens, MetricTotalOutputTokens,
			MetricTotalTokens, MetricSpanCount, MetricErrorCount,
		}),
		CostByModel:   toSortedModelTotals(costByModel, true),
		TokensByModel: toSortedModelTotals(tokensByModel, true),
		ModelsUsed:    sortedKeys(modelsSeen),
		ProvidersUsed: sortedKeys(providersSeen),
	}
	return summary
}

func toSortedModelTotals(m map[string]float64, descending bool) []ModelTotal {
	totals := make([]ModelTotal, 0, len(m))
	for model, value := range m {
		totals = append(totals, ModelTotal{Model: model, Value: value})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Value == totals[j].Value {
			return totals[i].Model < totals[j].Model
		}
		if descending {
			return totals[i].Value > totals[j].Value
		}
		return totals[i].Value < totals[j].Value
	})
	return totals
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
