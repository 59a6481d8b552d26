package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "en", cfg.SourceLang)
	assert.Equal(t, "ollama", cfg.Prose.Provider)
	assert.Empty(t, cfg.Prose.Model)
	assert.Empty(t, cfg.Prose.Endpoint)
	assert.Equal(t, "libretranslate", cfg.Terms.Provider)
	assert.Empty(t, cfg.Terms.Endpoint)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.True(t, cfg.TranslateContent)
	assert.Len(t, cfg.Fields, 7)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
source_lang: fr
prose:
  provider: openai
  api_key: sk-test
  model: gpt-4o
terms:
  provider: deeplx
  endpoint: http://deeplx:1188/translate
max_attempts: 5
fields:
  author: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "fr", cfg.SourceLang)
	assert.Equal(t, "openai", cfg.Prose.Provider)
	assert.Equal(t, "sk-test", cfg.Prose.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Prose.Model)
	assert.Equal(t, "deeplx", cfg.Terms.Provider)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 120, cfg.RequestTimeout)
	assert.False(t, cfg.FieldEnabled("author"))
	assert.True(t, cfg.FieldEnabled("title"))
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dict_dir: dicts\n"), 0o644))

	t.Setenv("MDT_TERMS_PROVIDER", "deepl")
	t.Setenv("DEEPL_API_KEY", "secret:fx")
	t.Setenv("MDT_MAX_ATTEMPTS", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "dicts", cfg.DictDir)
	assert.Equal(t, "deepl", cfg.Terms.Provider)
	assert.Equal(t, "secret:fx", cfg.Terms.APIKey)
	assert.Equal(t, 7, cfg.MaxAttempts)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prose: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Prose.Provider = "claude"
	cfg.Terms.Provider = "google"
	cfg.MaxAttempts = 0
	cfg.Fields["summary"] = true

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported prose provider "claude"`)
	assert.Contains(t, err.Error(), "term provider google requires api_key")
	assert.Contains(t, err.Error(), "max_attempts")
	assert.Contains(t, err.Error(), `"summary"`)
}

func TestLoadConfigProviderSwitchKeepsProviderDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prose:\n  api_key: sk-test\nterms:\n  api_key: gkey\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Prose.Provider = "openai"
	cfg.Terms.Provider = "google"

	assert.Empty(t, cfg.Prose.Endpoint)
	assert.Empty(t, cfg.Prose.Model)
	assert.Empty(t, cfg.Terms.Endpoint)
	require.NoError(t, cfg.Validate())
}

func TestValidateOpenAIWithoutKeyOrEndpoint(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Prose.Provider = "openai"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prose provider openai requires api_key")
}

func TestDisableField(t *testing.T) {
	cfg := NewDefaultConfig()

	require.NoError(t, cfg.DisableField("Tags"))
	assert.False(t, cfg.FieldEnabled("tags"))
	assert.Error(t, cfg.DisableField("summary"))
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.yaml")
	cfg := NewDefaultConfig()
	cfg.DictDir = "glossaries"
	require.NoError(t, cfg.DisableField("date"))

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "glossaries", loaded.DictDir)
	assert.False(t, loaded.FieldEnabled("date"))
	assert.Equal(t, cfg.Prose.Model, loaded.Prose.Model)
}
