package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_insight/internal/config"
)

func TestNewChatModel_Errors(t *testing.T) {
	_, err := NewChatModel(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI})
	assert.Error(t, err)

	_, err = NewChatModel(context.Background(), config.LLMConfig{Provider: "claude", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported")
}

func TestNewChatModel_OpenAICompatible(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "gen-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "mistralai/mistral-7b-instruct",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"is_valid\": true}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	temp := float32(0.3)
	gen, err := NewChatModel(context.Background(), config.LLMConfig{
		Provider:       config.ProviderOpenAI,
		APIKey:         "or-key",
		BaseURL:        srv.URL,
		Model:          "mistralai/mistral-7b-instruct",
		Temperature:    &temp,
		MaxTokens:      500,
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	out, err := Complete(context.Background(), gen, "", "validate")
	require.NoError(t, err)
	assert.Equal(t, `{"is_valid": true}`, out)
	assert.Equal(t, "mistralai/mistral-7b-instruct", body["model"])
	assert.EqualValues(t, 500, body["max_tokens"])
}
