package factory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerdneilsfield/go-md-translator/internal/config"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGenerator(t *testing.T) {
	f := New(nil, time.Second)

	for _, name := range config.ProseProviders {
		gen, err := f.CreateGenerator(config.BackendConfig{Provider: name, APIKey: "k"})
		require.NoError(t, err, name)
		assert.Equal(t, name, gen.GetName())
	}

	_, err := f.CreateGenerator(config.BackendConfig{Provider: "claude"})
	assert.Error(t, err)
}

func TestCreateTranslationProvider(t *testing.T) {
	f := New(nil, time.Second)

	for _, name := range config.TermProviders {
		provider, err := f.CreateTranslationProvider(config.BackendConfig{Provider: name, APIKey: "k"})
		require.NoError(t, err, name)
		assert.Equal(t, name, provider.GetName())
	}

	_, err := f.CreateTranslationProvider(config.BackendConfig{Provider: "babelfish"})
	assert.Error(t, err)
}

func TestFactoryWrapsWithStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"Hola","done":true}`))
	}))
	defer server.Close()

	manager := stats.NewStatsManager(nil)
	f := New(manager, 5*time.Second)

	gen, err := f.CreateGenerator(config.BackendConfig{Provider: "ollama", Endpoint: server.URL, Model: "llama3.2:3b"})
	require.NoError(t, err)
	_, ok := gen.(*stats.GeneratorMiddleware)
	require.True(t, ok)

	resp, err := gen.Generate(context.Background(), &providers.GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Hola", resp.Text)

	recorded := manager.GetStats("ollama", "llama3.2:3b")
	require.NotNil(t, recorded)
	assert.Equal(t, int64(1), recorded.SuccessfulRequests)
}

// captureTransport 拦截默认传输层上的请求，记录目标地址后返回 503
type captureTransport struct {
	mu   sync.Mutex
	urls []string
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.urls = append(c.urls, req.URL.Scheme+"://"+req.URL.Host+req.URL.Path)
	c.mu.Unlock()

	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusServiceUnavailable)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func (c *captureTransport) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.urls) == 0 {
		return ""
	}
	return c.urls[len(c.urls)-1]
}

func installCapture(t *testing.T) *captureTransport {
	t.Helper()
	capture := &captureTransport{}
	original := http.DefaultTransport
	http.DefaultTransport = capture
	t.Cleanup(func() { http.DefaultTransport = original })
	return capture
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if value, ok := os.LookupEnv(key); ok {
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() { _ = os.Setenv(key, value) })
	}
}

// loadedConfig 从仅含密钥的配置文件加载，端点与模型均取默认值
func loadedConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")
	t.Setenv("GOOGLE_TRANSLATE_API_KEY", "")
	unsetEnv(t, "OPENAI_BASE_URL")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "prose:\n  api_key: sk-test\n  max_retries: 0\nterms:\n  api_key: key\n  max_retries: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	return cfg
}

func TestTranslationProvidersUseOwnDefaultEndpoint(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"google", "https://translation.googleapis.com/language/translate/v2"},
		{"libretranslate", "http://localhost:5000/translate"},
		{"deeplx", "http://localhost:1188/translate"},
		{"deepl", "https://api.deepl.com/v2/translate"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := loadedConfig(t)
			capture := installCapture(t)
			cfg.Terms.Provider = tt.provider
			require.NoError(t, cfg.Validate())

			provider, err := New(nil, time.Second).CreateTranslationProvider(cfg.Terms)
			require.NoError(t, err)

			_, err = provider.Translate(context.Background(), &providers.ProviderRequest{
				Text: "news", SourceLanguage: "en", TargetLanguage: "es",
			})
			assert.Error(t, err)
			assert.Equal(t, tt.want, capture.last())
		})
	}
}

func TestGeneratorsUseOwnDefaultEndpointAndModel(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		model    string
	}{
		{"ollama", "http://localhost:11434/api/generate", "llama3.2:3b"},
		{"openai", "https://api.openai.com/v1/chat/completions", "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := loadedConfig(t)
			capture := installCapture(t)
			cfg.Prose.Provider = tt.provider
			require.NoError(t, cfg.Validate())

			manager := stats.NewStatsManager(nil)
			gen, err := New(manager, time.Second).CreateGenerator(cfg.Prose)
			require.NoError(t, err)

			_, err = gen.Generate(context.Background(), &providers.GenerateRequest{Prompt: "x"})
			assert.Error(t, err)
			assert.Equal(t, tt.want, capture.last())

			recorded := manager.GetStats(tt.provider, tt.model)
			require.NotNil(t, recorded)
			assert.Equal(t, int64(1), recorded.FailedRequests)
		})
	}
}
