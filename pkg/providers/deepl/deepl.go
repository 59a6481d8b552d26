package deepl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/retry"
)

const (
	// DefaultEndpoint 付费版接口
	DefaultEndpoint = "https://api.deepl.com/v2"
	// FreeEndpoint 免费版接口
	FreeEndpoint = "https://api-free.deepl.com/v2"
)

// Config DeepL配置
type Config struct {
	providers.BaseConfig
	RetryConfig retry.RetryConfig `json:"retry_config"`
	Formality   string            `json:"formality,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig:  providers.DefaultConfig(),
		RetryConfig: retry.DefaultRetryConfig(),
	}
	config.Timeout = providers.TermTimeout
	return config
}

// Provider DeepL提供商
type Provider struct {
	config     Config
	httpClient *retry.RetryableHTTPClient
}

var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建新的DeepL提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		// 免费版密钥以 :fx 结尾
		if strings.HasSuffix(config.APIKey, ":fx") {
			config.APIEndpoint = FreeEndpoint
		} else {
			config.APIEndpoint = DefaultEndpoint
		}
	}
	config.APIEndpoint = strings.TrimSuffix(config.APIEndpoint, "/")

	return &Provider{
		config:     config,
		httpClient: retry.NewRetryableHTTPClient(&http.Client{Timeout: config.Timeout}, config.RetryConfig),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "deepl"
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	if p.config.APIKey == "" {
		return nil, providers.NewError(p.GetName(), providers.CodeClientError, "API key is required")
	}

	params := url.Values{}
	params.Set("text", req.Text)
	params.Set("target_lang", NormalizeLanguageCode(req.TargetLanguage, false))
	if req.SourceLanguage != "" {
		params.Set("source_lang", NormalizeLanguageCode(req.SourceLanguage, true))
	}
	if p.config.Formality != "" {
		params.Set("formality", p.config.Formality)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/translate", strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+p.config.APIKey)
	for k, v := range p.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(resp.Body)
		var apiErr APIError
		message := resp.Status
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		// 456: 额度用尽
		if resp.StatusCode == 456 {
			return nil, providers.NewError(p.GetName(), providers.CodeRateLimit, "quota exceeded")
		}
		return nil, providers.StatusError(p.GetName(), resp.StatusCode, message)
	}

	var translateResp TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&translateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(translateResp.Translations) == 0 {
		return nil, providers.NewError(p.GetName(), providers.CodeBadResponse, "no translation returned")
	}

	first := translateResp.Translations[0]
	return &providers.ProviderResponse{
		Text:       first.Text,
		SourceLang: strings.ToLower(first.DetectedSourceLanguage),
		TargetLang: req.TargetLanguage,
	}, nil
}

// NormalizeLanguageCode 转换为DeepL格式的大写语言代码
func NormalizeLanguageCode(lang string, isSource bool) string {
	upper := strings.ToUpper(strings.Replace(lang, "_", "-", 1))

	if isSource {
		// 源语言不接受地区变体
		if i := strings.Index(upper, "-"); i > 0 {
			return upper[:i]
		}
		return upper
	}

	switch upper {
	case "EN":
		return "EN-US"
	case "PT":
		return "PT-BR"
	}
	return upper
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// APIError API错误
type APIError struct {
	Message string `json:"message"`
}
