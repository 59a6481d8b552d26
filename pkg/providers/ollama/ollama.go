package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/retry"
)

// DefaultEndpoint 本地 Ollama 服务地址
const DefaultEndpoint = "http://localhost:11434"

// DefaultModel 默认模型
const DefaultModel = "llama3.2:3b"

// Config Ollama配置
type Config struct {
	providers.BaseConfig
	Model       string            `json:"model"`
	Temperature float32           `json:"temperature"`
	RetryConfig retry.RetryConfig `json:"retry_config"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       DefaultModel,
		RetryConfig: retry.DefaultRetryConfig(),
	}
}

// Provider Ollama提供商
type Provider struct {
	config     Config
	httpClient *retry.RetryableHTTPClient
}

var _ providers.Generator = (*Provider)(nil)

// New 创建新的Ollama提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
	}
	config.APIEndpoint = strings.TrimSuffix(config.APIEndpoint, "/")
	if config.Model == "" {
		config.Model = DefaultModel
	}

	return &Provider{
		config:     config,
		httpClient: retry.NewRetryableHTTPClient(&http.Client{Timeout: config.Timeout}, config.RetryConfig),
	}
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "ollama"
}

// Generate 调用 /api/generate（非流式）
func (p *Provider) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	generateReq := GenerateRequest{
		Model:  model,
		Prompt: req.Prompt,
		Stream: false,
	}
	if p.config.Temperature > 0 {
		generateReq.Options = map[string]interface{}{
			"temperature": p.config.Temperature,
		}
	}

	resp, err := p.generate(ctx, generateReq)
	if err != nil {
		return nil, err
	}

	return &providers.GenerateResponse{
		Text:      resp.Response,
		Model:     resp.Model,
		TokensIn:  resp.PromptEvalCount,
		TokensOut: resp.EvalCount,
	}, nil
}

// generate 执行生成请求
func (p *Provider) generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.APIEndpoint+"/api/generate", bytes.NewReader(body))
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
		if json.Unmarshal(errBody, &apiErr) == nil && apiErr.ErrorMsg != "" {
			message = apiErr.ErrorMsg
		}
		return nil, providers.StatusError(p.GetName(), resp.StatusCode, message)
	}

	var generateResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if generateResp.Error != "" {
		return nil, providers.NewError(p.GetName(), providers.CodeBadResponse, generateResp.Error)
	}

	return &generateResp, nil
}

// GenerateRequest 生成请求
type GenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse 生成响应
type GenerateResponse struct {
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Response        string    `json:"response"`
	Done            bool      `json:"done"`
	TotalDuration   int64     `json:"total_duration"`
	PromptEvalCount int       `json:"prompt_eval_count"`
	EvalCount       int       `json:"eval_count"`
	Error           string    `json:"error,omitempty"`
}

// APIError API错误
type APIError struct {
	ErrorMsg string `json:"error"`
}

func (e *APIError) Error() string {
	return e.ErrorMsg
}
