package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/finchat/internal/resilience"
	"github.com/sells-group/finchat/pkg/openai"
)

func TestOpenAI_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body["model"])
		assert.Equal(t, 0.0, body["temperature"])
		assert.Equal(t, float64(1024), body["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"회사: 삼성전자\n연도: 2023"}}],"usage":{"prompt_tokens":100,"completion_tokens":10}}`))
	}))
	defer srv.Close()

	g := NewOpenAI(openai.NewClient("k", openai.WithBaseURL(srv.URL)), "gpt-4o", 1024, 0)
	resp, err := g.Generate(context.Background(), Request{Phase: PhaseExtract, Prompt: "추출"})
	require.NoError(t, err)
	assert.Equal(t, "회사: 삼성전자\n연도: 2023", resp.Text)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, int64(100), resp.Usage.InputTokens)
	assert.Equal(t, int64(10), resp.Usage.OutputTokens)
	assert.Greater(t, resp.Usage.Cost, 0.0)
}

func TestOpenAI_Generate_StatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusUnauthorized, false},
		{http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"test"}}`))
			}))
			defer srv.Close()

			g := NewOpenAI(openai.NewClient("k", openai.WithBaseURL(srv.URL)), "gpt-4o", 16, 0)
			_, err := g.Generate(context.Background(), Request{Phase: PhaseClassify, Prompt: "p"})
			require.Error(t, err)
			assert.Equal(t, tt.transient, resilience.IsTransient(err))
			assert.Equal(t, tt.status, openai.StatusCode(err))
		})
	}
}
