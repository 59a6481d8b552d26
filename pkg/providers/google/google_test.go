package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(endpoint string) *Provider {
	config := DefaultConfig()
	config.APIKey = "test-key"
	config.APIEndpoint = endpoint
	config.Timeout = 5 * time.Second
	config.RetryConfig = retry.RetryConfig{MaxRetries: 0}
	return New(config)
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-key", r.PostForm.Get("key"))
		assert.Equal(t, "technology", r.PostForm.Get("q"))
		assert.Equal(t, "en", r.PostForm.Get("source"))
		assert.Equal(t, "zh-TW", r.PostForm.Get("target"))
		assert.Equal(t, "text", r.PostForm.Get("format"))

		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"科技"}]}}`))
	}))
	defer server.Close()

	resp, err := testProvider(server.URL).Translate(context.Background(), &providers.ProviderRequest{
		Text:           "technology",
		SourceLanguage: "en",
		TargetLanguage: "zh_TW",
	})
	require.NoError(t, err)
	assert.Equal(t, "科技", resp.Text)
	assert.Equal(t, "en", resp.SourceLang)
}

func TestTranslateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	}))
	defer server.Close()

	_, err := testProvider(server.URL).Translate(context.Background(), &providers.ProviderRequest{
		Text:           "x",
		TargetLanguage: "es",
	})
	require.Error(t, err)

	pe, ok := providers.IsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, pe.Status)
	assert.Contains(t, pe.Message, "API key not valid")
}

func TestTranslateRequiresKey(t *testing.T) {
	_, err := New(DefaultConfig()).Translate(context.Background(), &providers.ProviderRequest{Text: "x", TargetLanguage: "es"})
	assert.Error(t, err)
}

func TestTranslateEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"translations":[]}}`))
	}))
	defer server.Close()

	_, err := testProvider(server.URL).Translate(context.Background(), &providers.ProviderRequest{Text: "x", TargetLanguage: "es"})
	pe, ok := providers.IsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, providers.CodeBadResponse, pe.Code)
}
