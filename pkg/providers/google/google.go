package google

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

// DefaultEndpoint Cloud Translation v2 接口地址
const DefaultEndpoint = "https://translation.googleapis.com/language/translate/v2"

// Config Google翻译配置
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

// Provider Google翻译提供商
type Provider struct {
	config     Config
	httpClient *retry.RetryableHTTPClient
}

var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建新的Google翻译提供商
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
	return "google"
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	if p.config.APIKey == "" {
		return nil, providers.NewError(p.GetName(), providers.CodeClientError, "API key is required")
	}

	params := url.Values{}
	params.Set("key", p.config.APIKey)
	params.Set("q", req.Text)
	params.Set("target", normalizeLanguageCode(req.TargetLanguage))
	params.Set("format", "text")
	if req.SourceLanguage != "" {
		params.Set("source", normalizeLanguageCode(req.SourceLanguage))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
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
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		return nil, providers.StatusError(p.GetName(), resp.StatusCode, message)
	}

	var translateResp TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&translateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(translateResp.Data.Translations) == 0 {
		return nil, providers.NewError(p.GetName(), providers.CodeBadResponse, "no translation returned")
	}

	first := translateResp.Data.Translations[0]
	result := &providers.ProviderResponse{
		Text:       first.TranslatedText,
		SourceLang: req.SourceLanguage,
		TargetLang: req.TargetLanguage,
	}
	if first.DetectedSourceLanguage != "" {
		result.SourceLang = first.DetectedSourceLanguage
	}
	return result, nil
}

// normalizeLanguageCode 处理 xx_YY 格式
func normalizeLanguageCode(lang string) string {
	return strings.Replace(lang, "_", "-", 1)
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage,omitempty"`
		} `json:"translations"`
	} `json:"data"`
}

// APIError API错误
type APIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
