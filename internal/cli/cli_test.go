package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nerdneilsfield/go-md-translator/internal/config"
	"github.com/nerdneilsfield/go-md-translator/internal/frontmatter"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const post = `---
title: "Hello World"
description: "A short intro"
date: 2024-03-01
draft: false
author: "John"
tags: ["tech", "news"]
---

Body text here.
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand("test", "abc123", "today")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// backends 启动 Ollama 与 LibreTranslate 的模拟服务并写入配置文件
func backends(t *testing.T) (cfgPath string, dir string) {
	t.Helper()

	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_, _ = w.Write([]byte(`{"model":"llama3.2:3b","response":"Hola Mundo","done":true}`))
	}))
	t.Cleanup(ollama.Close)

	libre := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		translated := map[string]string{"news": "Noticias"}[req["q"]]
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": translated})
	}))
	t.Cleanup(libre.Close)

	dir = t.TempDir()
	dictDir := filepath.Join(dir, "dictionaries")
	require.NoError(t, os.MkdirAll(dictDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dictDir, "es.csv"), []byte("term,translation\ntech,Tecnología\n"), 0o644))

	cfgPath = filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`prose:
  provider: ollama
  endpoint: %s
  max_retries: 0
terms:
  provider: libretranslate
  endpoint: %s
  max_retries: 0
dict_dir: %s
request_timeout: 5
`, ollama.URL, libre.URL, dictDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, dir
}

func TestTranslateEndToEnd(t *testing.T) {
	cfgPath, dir := backends(t)
	input := filepath.Join(dir, "content", "en", "hello.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0o755))
	require.NoError(t, os.WriteFile(input, []byte(post), 0o644))

	stdout, _, err := execute(t, "--config", cfgPath, "--no-content", input, "ES")
	require.NoError(t, err)

	output := filepath.Join(dir, "content", "es", "hello.md")
	data, err := os.ReadFile(output)
	require.NoError(t, err)

	want := "---\n" +
		"title: \"Hola Mundo\"\n" +
		"description: \"Hola Mundo\"\n" +
		"date: 2024-03-01\n" +
		"draft: false\n" +
		"author: \"John\"\n" +
		"tags: [\"Tecnología\", \"Noticias\"]\n" +
		"---\n" +
		"\nBody text here.\n"
	assert.Equal(t, want, string(data))

	assert.Contains(t, stdout, "Spanish (es)")
	assert.Contains(t, stdout, output)
	assert.Contains(t, stdout, "Backend Statistics")
	assert.Contains(t, stdout, "libretranslate")
	assert.Contains(t, stdout, "dictionary:1")
}

// hostTransport 按主机名分派到处理函数，用于替换默认传输层
type hostTransport struct {
	mu       sync.Mutex
	hosts    []string
	handlers map[string]http.HandlerFunc
}

func (h *hostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	h.mu.Lock()
	h.hosts = append(h.hosts, req.URL.Host)
	h.mu.Unlock()

	rec := httptest.NewRecorder()
	if handler, ok := h.handlers[req.URL.Host]; ok {
		handler(rec, req)
	} else {
		rec.WriteHeader(http.StatusBadGateway)
	}
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func TestTranslateWithProvidersSwitchedByFlag(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_TRANSLATE_API_KEY", "")
	t.Setenv("DEEPL_API_KEY", "")
	if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok {
		require.NoError(t, os.Unsetenv("OPENAI_BASE_URL"))
		t.Cleanup(func() { _ = os.Setenv("OPENAI_BASE_URL", value) })
	}

	var openaiModel string
	transport := &hostTransport{handlers: map[string]http.HandlerFunc{
		"api.openai.com": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			openaiModel, _ = req["model"].(string)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
				`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hola Mundo"}}],` +
				`"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`))
		},
		"translation.googleapis.com": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "gkey", r.PostForm.Get("key"))
			translated := map[string]string{"news": "Noticias"}[r.PostForm.Get("q")]
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"translations": []map[string]string{{"translatedText": translated}}},
			})
		},
	}}
	original := http.DefaultTransport
	http.DefaultTransport = transport
	t.Cleanup(func() { http.DefaultTransport = original })

	dir := t.TempDir()
	dictDir := filepath.Join(dir, "dictionaries")
	require.NoError(t, os.MkdirAll(dictDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dictDir, "es.csv"), []byte("term,translation\ntech,Tecnología\n"), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("prose:\n  api_key: sk-test\n  max_retries: 0\nterms:\n  api_key: gkey\n  max_retries: 0\ndict_dir: %s\nrequest_timeout: 5\n", dictDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	input := filepath.Join(dir, "hello.md")
	require.NoError(t, os.WriteFile(input, []byte(post), 0o644))

	stdout, _, err := execute(t, "--config", cfgPath, "--prose-provider", "openai", "--term-provider", "google",
		"--no-content", input, "es")
	require.NoError(t, err)

	doc, err := frontmatter.Load(filepath.Join(dir, "hello.es.md"))
	require.NoError(t, err)
	title, _ := doc.Get(frontmatter.FieldTitle)
	tags, _ := doc.Get(frontmatter.FieldTags)
	assert.Equal(t, "Hola Mundo", title.Str)
	assert.Equal(t, []string{"Tecnología", "Noticias"}, tags.List)

	assert.Equal(t, "gpt-4o-mini", openaiModel)
	assert.Contains(t, transport.hosts, "api.openai.com")
	assert.Contains(t, transport.hosts, "translation.googleapis.com")
	for _, host := range transport.hosts {
		assert.NotContains(t, host, "localhost", "request sent to a local default endpoint")
	}
	assert.Contains(t, stdout, "google")
	assert.Contains(t, stdout, "gpt-4o-mini")
}

func TestTranslateOutputOverrideAndSkipField(t *testing.T) {
	cfgPath, dir := backends(t)
	input := filepath.Join(dir, "hello.md")
	require.NoError(t, os.WriteFile(input, []byte(post), 0o644))
	output := filepath.Join(dir, "out", "nested", "hola.md")

	_, _, err := execute(t, "--config", cfgPath, "-o", output, "--skip-field", "description", "--skip-field", "author", input, "es")
	require.NoError(t, err)

	doc, err := frontmatter.Load(output)
	require.NoError(t, err)
	_, hasDescription := doc.Get(frontmatter.FieldDescription)
	_, hasAuthor := doc.Get(frontmatter.FieldAuthor)
	assert.False(t, hasDescription)
	assert.False(t, hasAuthor)
	assert.Equal(t, "\nHola Mundo\n", doc.Body)
}

func TestTranslateInvalidTargetLanguage(t *testing.T) {
	cfgPath, dir := backends(t)
	input := filepath.Join(dir, "hello.md")
	require.NoError(t, os.WriteFile(input, []byte(post), 0o644))

	_, stderr, err := execute(t, "--config", cfgPath, input, "spanish")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.Contains(t, stderr, `Invalid target language code: "spanish"`)
	assert.Contains(t, stderr, "Did you mean: Spanish (es)")
	assert.Contains(t, stderr, "Supported Languages")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "hello.spanish"), e.Name())
	}
}

func TestTranslateInvalidSourceLanguage(t *testing.T) {
	cfgPath, dir := backends(t)
	input := filepath.Join(dir, "hello.md")
	require.NoError(t, os.WriteFile(input, []byte(post), 0o644))

	_, _, err := execute(t, "--config", cfgPath, "-s", "xx", input, "es")
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestTranslateMissingTitle(t *testing.T) {
	cfgPath, dir := backends(t)
	input := filepath.Join(dir, "hello.md")
	require.NoError(t, os.WriteFile(input, []byte("---\ndraft: true\n---\nBody\n"), 0o644))

	_, stderr, err := execute(t, "--config", cfgPath, input, "es")
	require.Error(t, err)
	assert.Contains(t, stderr, "Translation failed")
	assert.NoFileExists(t, filepath.Join(dir, "hello.es.md"))
}

func TestTranslateRejectsUnknownProvider(t *testing.T) {
	cfgPath, dir := backends(t)
	input := filepath.Join(dir, "hello.md")
	require.NoError(t, os.WriteFile(input, []byte(post), 0o644))

	_, _, err := execute(t, "--config", cfgPath, "--term-provider", "babelfish", input, "es")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported term provider")
}

func TestRequiresTwoArgs(t *testing.T) {
	_, _, err := execute(t, "only-one.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s), received 1")
}

func TestListLanguages(t *testing.T) {
	stdout, _, err := execute(t, "--list-languages")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Supported Languages")
	for _, code := range language.SupportedCodes() {
		assert.Contains(t, stdout, code)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "commit abc123")
	assert.Contains(t, stdout, "built today")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	bad := filepath.Join(dir, "bad.md")
	require.NoError(t, os.WriteFile(good, []byte("---\ntitle: \"Hola\"\ndraft: false\n---\nBody text\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("title: Hola\n---\n"), 0o644))

	stdout, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ "+good)

	stdout, _, err = execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, stdout, "✗ "+bad)
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "md-translator.yaml")

	stdout, _, err := execute(t, "init-config", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Prose.Provider)
	assert.Equal(t, "libretranslate", cfg.Terms.Provider)
}

func TestSuggestLanguages(t *testing.T) {
	codes := func(infos []language.Info) []string {
		out := make([]string, len(infos))
		for i, info := range infos {
			out[i] = string(info.Code)
		}
		return out
	}

	assert.Contains(t, codes(suggestLanguages("span")), "es")
	assert.Contains(t, codes(suggestLanguages("eb")), "en")
	assert.Empty(t, suggestLanguages(""))
	assert.LessOrEqual(t, len(suggestLanguages("xx")), maxSuggestions)
}
