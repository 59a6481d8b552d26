package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/retry"
)

// DefaultEndpoint 自托管 LibreTranslate 默认地址
const DefaultEndpoint = "http://localhost:5000"

// Config LibreTranslate配置
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

// Provider LibreTranslate提供商
type Provider struct {
	config     Config
	httpClient *retry.RetryableHTTPClient
}

var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建新的LibreTranslate提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
	}
	config.APIEndpoint = strings.TrimSuffix(config.APIEndpoint, "/")

	return &Provider{
		config:     config,
		httpClient: retry.NewRetryableHTTPClient(&http.Client{Timeout: config.Timeout}, config.RetryConfig),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "libretranslate"
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	source := normalizeLanguageCode(req.SourceLanguage)
	if source == "" {
		source = "auto"
	}

	body, err := json.Marshal(TranslateRequest{
		Q:      req.Text,
		Source: source,
		Target: normalizeLanguageCode(req.TargetLanguage),
		Format: "text",
		APIKey: p.config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/translate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
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
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return nil, providers.StatusError(p.GetName(), resp.StatusCode, message)
	}

	var translateResp TranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&translateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	result := &providers.ProviderResponse{
		Text:       translateResp.TranslatedText,
		SourceLang: req.SourceLanguage,
		TargetLang: req.TargetLanguage,
	}
	if translateResp.DetectedLanguage != nil {
		result.SourceLang = translateResp.DetectedLanguage.Language
		result.Metadata = map[string]interface{}{
			"confidence": translateResp.DetectedLanguage.Confidence,
		}
	}
	return result, nil
}

// normalizeLanguageCode LibreTranslate 只接受基础语言代码
func normalizeLanguageCode(lang string) string {
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		// zh-Hant 是唯一带变体的代码
		if lang[i+1:] == "hant" || lang[i+1:] == "tw" {
			return "zt"
		}
		return lang[:i]
	}
	return lang
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage *struct {
		Confidence float64 `json:"confidence"`
		Language   string  `json:"language"`
	} `json:"detectedLanguage,omitempty"`
}

// APIError API错误
type APIError struct {
	Error string `json:"error"`
}
