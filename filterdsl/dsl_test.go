package filterdsl_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewayhq/traceway/filterdsl"
	"github.com/tracewayhq/traceway/ids"
)

func TestParse_KeyedTokens(t *testing.T) {
	clock := ids.NewFixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	f, err := filterdsl.Parse(`kind:llm_call model:gpt-4o status:completed`, clock)
	require.NoError(t, err)
	require.NotNil(t, f.Kind)
	assert.Equal(t, "llm_call", *f.Kind)
	require.NotNil(t, f.Model)
	assert.Equal(t, "gpt-4o", *f.Model)
	require.NotNil(t, f.Status)
	assert.Equal(t, "completed", *f.Status)
}

func TestParse_BareWordsConcatenateIntoNameContains(t *testing.T) {
	clock := ids.NewFixed(time.Now())
	f, err := filterdsl.Parse(`kind:llm_call hello world`, clock)
	require.NoError(t, err)
	require.NotNil(t, f.NameContains)
	assert.Equal(t, "hello world", *f.NameContains)
}

func TestParse_QuotedValueWithSpaces(t *testing.T) {
	clock := ids.NewFixed(time.Now())
	f, err := filterdsl.Parse(`path:"/tmp/my file.txt"`, clock)
	require.NoError(t, err)
	require.NotNil(t, f.Path)
	assert.Equal(t, "/tmp/my file.txt", *f.Path)
}

func TestParse_RelativeOffset(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := ids.NewFixed(now)
	f, err := filterdsl.Parse(`since:2h`, clock)
	require.NoError(t, err)
	require.NotNil(t, f.Since)
	assert.Equal(t, now.Add(-2*time.Hour), *f.Since)
}

func TestParse_ISO8601Timestamp(t *testing.T) {
	clock := ids.NewFixed(time.Now())
	f, err := filterdsl.Parse(`since:2026-01-01T00:00:00Z`, clock)
	require.NoError(t, err)
	require.NotNil(t, f.Since)
	assert.Equal(t, 2026, f.Since.Year())
}

func TestParse_InvalidTimeValue(t *testing.T) {
	clock := ids.NewFixed(time.Now())
	_, err := filterdsl.Parse(`since:not-a-time`, clock)
	assert.Error(t, err)
}

func TestParse_UnterminatedQuote(t *testing.T) {
	clock := ids.NewFixed(time.Now())
	_, err := filterdsl.Parse(`path:"unterminated`, clock)
	assert.Error(t, err)
}

func TestRoundTrip_NoWhitespaceInValues(t *testing.T) {
	clock := ids.NewFixed(time.Now())
	dsl := `trace:abc status:completed kind:llm_call model:gpt-4o provider:openai path:/tmp/f name`
	f1, err := filterdsl.Parse(dsl, clock)
	require.NoError(t, err)

	rendered := filterdsl.ToDSL(f1)
	f2, err := filterdsl.Parse(rendered, clock)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
}
