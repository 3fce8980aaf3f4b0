package textgen

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// scriptedModel returns the queued results in order and records requests.
type scriptedModel struct {
	results  []result
	requests []Request
}

type result struct {
	text string
	err  error
}

func (m *scriptedModel) GenerateContent(ctx context.Context, prompt string, req Request) (string, error) {
	m.requests = append(m.requests, req)
	if len(m.results) == 0 {
		return "", errors.New("unexpected call")
	}
	r := m.results[0]
	m.results = m.results[1:]
	return r.text, r.err
}

// recordSleep collects the waits instead of sleeping.
func recordSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestGenerateRetriesRateLimitThenSucceeds(t *testing.T) {
	model := &scriptedModel{results: []result{
		{err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "slow down"}},
		{err: errors.New("googleapi: Error 429: Quota exceeded")},
		{text: "O *Led Zeppelin IV* saiu em 1971."},
	}}
	var waits []time.Duration
	g := New(model, WithSleep(recordSleep(&waits)))

	text, err := g.Generate(context.Background(), "prompt", Options{Label: "history"})
	require.NoError(t, err)
	assert.Equal(t, "O <i>Led Zeppelin IV</i> saiu em 1971.", text)
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second}, waits)
	assert.Len(t, model.requests, 3)

	var total time.Duration
	for _, w := range waits {
		total += w
	}
	assert.Equal(t, 90*time.Second, total)
}

func TestGenerateNonRateLimitErrorFailsOnce(t *testing.T) {
	model := &scriptedModel{results: []result{
		{err: errors.New("connection reset by peer")},
		{text: "never reached"},
	}}
	var waits []time.Duration
	g := New(model, WithSleep(recordSleep(&waits)))

	_, err := g.Generate(context.Background(), "prompt", Options{})
	require.ErrorIs(t, err, ErrProvider)
	assert.Len(t, model.requests, 1)
	assert.Empty(t, waits)
}

func TestGenerateGivesUpAfterMaxRetries(t *testing.T) {
	rl := genai.APIError{Code: 429}
	model := &scriptedModel{results: []result{{err: rl}, {err: rl}, {err: rl}, {err: rl}, {text: "late"}}}
	var waits []time.Duration
	g := New(model, WithSleep(recordSleep(&waits)))

	_, err := g.Generate(context.Background(), "prompt", Options{})
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, model.requests, 4)
	assert.Equal(t, []time.Duration{30 * time.Second, 60 * time.Second, 90 * time.Second}, waits)
}

func TestGenerateWithoutCredential(t *testing.T) {
	g := New(nil)
	assert.False(t, g.Enabled())

	_, err := g.Generate(context.Background(), "prompt", Options{})
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestGenerateEmptyResponse(t *testing.T) {
	g := New(&scriptedModel{results: []result{{text: "   "}}})

	_, err := g.Generate(context.Background(), "prompt", Options{})
	assert.ErrorIs(t, err, ErrProvider)
}

func TestGenerateStopsWhenContextCancelled(t *testing.T) {
	model := &scriptedModel{results: []result{{err: genai.APIError{Code: 429}}}}
	g := New(model) // real sleep: 30s, cancelled below

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "prompt", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateTemperature(t *testing.T) {
	model := &scriptedModel{results: []result{{text: "a"}, {text: "b"}}}
	g := New(model)

	_, err := g.Generate(context.Background(), "p", Options{})
	require.NoError(t, err)
	low := float32(0.2)
	_, err = g.Generate(context.Background(), "p", Options{Temperature: &low, JSON: true})
	require.NoError(t, err)

	assert.Equal(t, Request{Temperature: DefaultTemperature}, model.requests[0])
	assert.Equal(t, Request{Temperature: 0.2, JSON: true}, model.requests[1])
}

func TestGenerateStructuredOutputIsCleaned(t *testing.T) {
	model := &scriptedModel{results: []result{{text: "```json\n[{\"data\": \"07/09/1968\", \"contexto\": \"*x*\"}]\n```"}}}
	g := New(model)

	text, err := g.Generate(context.Background(), "p", Options{JSON: true})
	require.NoError(t, err)
	// emphasis is left for the caller to apply per field
	assert.Equal(t, `[{"data": "07/09/1968", "contexto": "*x*"}]`, text)
}

func TestGenerateStripMode(t *testing.T) {
	g := New(&scriptedModel{results: []result{{text: "ouça *Kashmir*"}}}, WithEmphasis(EmphasisStrip))

	text, err := g.Generate(context.Background(), "p", Options{})
	require.NoError(t, err)
	assert.Equal(t, "ouça Kashmir", text)
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{genai.APIError{Code: 429}, true},
		{genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{fmt.Errorf("wrapped: %w", genai.APIError{Code: 429}), true},
		{genai.APIError{Code: 500, Message: "internal"}, false},
		{errors.New("You exceeded your current Quota"), true},
		{errors.New("HTTP 429 Too Many Requests"), true},
		{errors.New("invalid argument"), false},
		{context.Canceled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRateLimit(tt.err), "IsRateLimit(%v)", tt.err)
	}
}
