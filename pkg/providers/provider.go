package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// BaseConfig 基础配置
type BaseConfig struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// 超时和重试
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// TermTimeout 短文本机器翻译的默认超时
const TermTimeout = 30 * time.Second

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    2 * time.Minute, // 本地 LLM 生成较慢
		MaxRetries: 2,
		RetryDelay: time.Second,
		Headers:    make(map[string]string),
	}
}

// TranslationProvider 机器翻译提供商（用于标签、分类、作者等短文本）
type TranslationProvider interface {
	// Translate 执行翻译
	Translate(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// GetName 获取提供商名称
	GetName() string
}

// Generator 文本生成提供商（用于标题、描述、正文等长文本）
type Generator interface {
	// Generate 根据提示词生成文本
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// GetName 获取提供商名称
	GetName() string
}

// ProviderRequest 机器翻译请求
type ProviderRequest struct {
	Text           string                 `json:"text"`
	SourceLanguage string                 `json:"source_language,omitempty"`
	TargetLanguage string                 `json:"target_language"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// ProviderResponse 机器翻译响应
type ProviderResponse struct {
	Text       string                 `json:"text"`
	SourceLang string                 `json:"source_lang,omitempty"`
	TargetLang string                 `json:"target_lang,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// GenerateRequest 文本生成请求
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// GenerateResponse 文本生成响应
type GenerateResponse struct {
	Text      string `json:"text"`
	Model     string `json:"model"`
	TokensIn  int    `json:"tokens_in,omitempty"`
	TokensOut int    `json:"tokens_out,omitempty"`
}

// 错误码
const (
	CodeRateLimit   = "rate_limit"
	CodeTimeout     = "timeout"
	CodeServerError = "server_error"
	CodeClientError = "client_error"
	CodeBadResponse = "bad_response"
)

// Error 提供商错误
type Error struct {
	Provider string                 `json:"provider"`
	Code     string                 `json:"code"`
	Message  string                 `json:"message"`
	Status   int                    `json:"status,omitempty"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// IsRetryable 判断错误是否可重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case CodeRateLimit, CodeTimeout, CodeServerError:
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(provider, code, message string) *Error {
	return &Error{
		Provider: provider,
		Code:     code,
		Message:  message,
	}
}

// StatusError 根据HTTP状态码创建错误
func StatusError(provider string, status int, message string) *Error {
	code := CodeClientError
	switch {
	case status == 429:
		code = CodeRateLimit
	case status >= 500:
		code = CodeServerError
	}
	if message == "" {
		message = "unexpected response"
	}
	return &Error{
		Provider: provider,
		Code:     code,
		Message:  message,
		Status:   status,
	}
}

// IsProviderError 判断是否为提供商错误
func IsProviderError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
