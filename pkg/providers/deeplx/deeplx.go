package deeplx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/deepl"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/retry"
)

// DefaultEndpoint 本地 DeepLX 服务地址
const DefaultEndpoint = "http://localhost:1188/translate"

// Config DeepLX配置
type Config struct {
	providers.BaseConfig
	RetryConfig retry.RetryConfig `json:"retry_config"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig:  providers.DefaultConfig(),
		RetryConfig: retry.DefaultRetryConfig(),
	}
	config.APIEndpoint = DefaultEndpoint
	config.Timeout = providers.TermTimeout
	return config
}

// Provider DeepLX提供商
type Provider struct {
	config     Config
	httpClient *retry.RetryableHTTPClient
}

var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建新的DeepLX提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
	}

	return &Provider{
		config:     config,
		httpClient: retry.NewRetryableHTTPClient(&http.Client{Timeout: config.Timeout}, config.RetryConfig),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "deeplx"
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	body, err := json.Marshal(TranslateRequest{
		Text:       req.Text,
		SourceLang: deepl.NormalizeLanguageCode(req.SourceLanguage, true),
		TargetLang: deepl.NormalizeLanguageCode(req.TargetLanguage, false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}
	for k, v := range p.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var translateResp TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&translateResp); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, providers.StatusError(p.GetName(), resp.StatusCode, resp.Status)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// DeepLX 在响应体里携带业务状态码
	code := translateResp.Code
	if code == 0 {
		code = resp.StatusCode
	}
	if code != http.StatusOK {
		return nil, providers.StatusError(p.GetName(), code, translateResp.Message)
	}

	return &providers.ProviderResponse{
		Text:       translateResp.Data,
		SourceLang: translateResp.SourceLang,
		TargetLang: req.TargetLanguage,
	}, nil
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message,omitempty"`
	Data       string `json:"data"`
	SourceLang string `json:"source_lang,omitempty"`
}
