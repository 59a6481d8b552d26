package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(endpoint string) *Provider {
	config := DefaultConfig()
	config.APIKey = "test-key"
	config.APIEndpoint = endpoint + "/"
	config.MaxRetries = 0
	config.Timeout = 5 * time.Second
	return New(config)
}

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body["model"])

		messages := body["messages"].([]interface{})
		require.Len(t, messages, 1)
		assert.Equal(t, "Translate: Hello", messages[0].(map[string]interface{})["content"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hola"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 2, "total_tokens": 11}
		}`))
	}))
	defer server.Close()

	resp, err := newTestProvider(server.URL).Generate(context.Background(), &providers.GenerateRequest{
		Model:  "gpt-4o",
		Prompt: "Translate: Hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hola", resp.Text)
	assert.Equal(t, "gpt-4o", resp.Model)
	assert.Equal(t, 9, resp.TokensIn)
	assert.Equal(t, 2, resp.TokensOut)
}

func TestGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Generate(context.Background(), &providers.GenerateRequest{Prompt: "x"})
	require.Error(t, err)

	pe, ok := providers.IsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, providers.CodeBadResponse, pe.Code)
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	_, err := newTestProvider(server.URL).Generate(context.Background(), &providers.GenerateRequest{Prompt: "x"})
	assert.Error(t, err)
}

func TestGetName(t *testing.T) {
	assert.Equal(t, "openai", New(DefaultConfig()).GetName())
}
