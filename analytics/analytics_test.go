package analytics_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/analytics"
	"github.com/tracewayhq/traceway/models"
)

func llmSpan(model string, cost float64) *models.Span {
	return &models.Span{
		ID:      uuid.New(),
		TraceID: uuid.New(),
		Kind: models.SpanKind{
			Type:  models.SpanKindLLMCall,
			Model: model,
			Cost:  &cost,
		},
		Status: models.Status{
			Phase:     models.StatusCompleted,
			StartedAt: time.Now(),
			EndedAt:   timePtr(time.Now()),
		},
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestCompute_GroupByModel(t *testing.T) {
	spans := []*models.Span{
		llmSpan("a", 1),
		llmSpan("a", 2),
		llmSpan("b", 3),
	}
	result, err := analytics.Compute(spans, []string{"model"}, []string{"total_cost", "span_count"})
	require.NoError(t, err)

	assert.Equal(t, float64(6), result.Totals["total_cost"])
	assert.Equal(t, float64(3), result.Totals["span_count"])
	require.Len(t, result.Groups, 2)

	byModel := map[string]map[string]float64{}
	for _, g := range result.Groups {
		byModel[g.Key["model"]] = g.Metrics
	}
	assert.Equal(t, float64(3), byModel["a"]["total_cost"])
	assert.Equal(t, float64(2), byModel["a"]["span_count"])
	assert.Equal(t, float64(3), byModel["b"]["total_cost"])
	assert.Equal(t, float64(1), byModel["b"]["span_count"])
}

func TestCompute_UnsupportedMetric(t *testing.T) {
	_, err := analytics.Compute(nil, nil, []string{"not_a_metric"})
	assert.Error(t, err)
}

func TestCompute_GroupsSortDescendingBySpanCountThenKey(t *testing.T) {
	spans := []*models.Span{
		llmSpan("a", 1),
		llmSpan("a", 2),
		llmSpan("b", 3),
		llmSpan("c", 1),
		llmSpan("c", 1),
	}
	result, err := analytics.Compute(spans, []string{"model"}, []string{"span_count"})
	require.NoError(t, err)
	require.Len(t, result.Groups, 3)

	assert.Equal(t, "a", result.Groups[0].Key["model"])
	assert.Equal(t, float64(2), result.Groups[0].Metrics["span_count"])
	assert.Equal(t, "c", result.Groups[1].Key["model"])
	assert.Equal(t, float64(2), result.Groups[1].Metrics["span_count"])
	assert.Equal(t, "b", result.Groups[2].Key["model"])
	assert.Equal(t, float64(1), result.Groups[2].Metrics["span_count"])
}

func llmSpanWithProvider(model, provider string, cost float64, inTok, outTok int64) *models.Span {
	s := llmSpan(model, cost)
	s.Kind.Provider = &provider
	s.Kind.InputTokens = &inTok
	s.Kind.OutputTokens = &outTok
	return s
}

func TestComputeSummary_SortsDescendingAndDedupesUsed(t *testing.T) {
	spans := []*models.Span{
		llmSpanWithProvider("gpt-4", "openai", 5, 100, 50),
		llmSpanWithProvider("gpt-4", "openai", 3, 40, 20),
		llmSpanWithProvider("claude", "anthropic", 9, 10, 10),
	}
	summary := analytics.ComputeSummary(spans)

	require.Len(t, summary.CostByModel, 2)
	assert.Equal(t, "claude", summary.CostByModel[0].Model)
	assert.Equal(t, float64(9), summary.CostByModel[0].Value)
	assert.Equal(t, "gpt-4", summary.CostByModel[1].Model)
	assert.Equal(t, float64(8), summary.CostByModel[1].Value)

	assert.Equal(t, []string{"claude", "gpt-4"}, summary.ModelsUsed)
	assert.Equal(t, []string{"anthropic", "openai"}, summary.ProvidersUsed)
	assert.Equal(t, float64(17), summary.Totals["total_cost"])
}

func TestCompute_UnsupportedDimension(t *testing.T) {
	_, err := analytics.Compute(nil, []string{"not_a_dim"}, nil)
	assert.Error(t, err)
}

func TestCompute_AvgLatencySkipsRunningSpans(t *testing.T) {
	started := time.Now().Add(-time.Second)
	ended := time.Now()
	running := &models.Span{
		ID: uuid.New(), TraceID: uuid.New(),
		Kind:   models.SpanKind{Type: models.SpanKindCustom, Subtype: "x"},
		Status: models.Status{Phase: models.StatusRunning, StartedAt: started},
	}
	completed := &models.Span{
		ID: uuid.New(), TraceID: uuid.New(),
		Kind:   models.SpanKind{Type: models.SpanKindCustom, Subtype: "x"},
		Status: models.Status{Phase: models.StatusCompleted, StartedAt: started, EndedAt: &ended},
	}
	result, err := analytics.Compute([]*models.Span{running, completed}, nil, []string{"avg_latency_ms"})
	require.NoError(t, err)
	assert.InDelta(t, 1000, result.Totals["avg_latency_ms"], 50)
}
