package stats

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// TranslationMiddleware 为机器翻译提供商记录调用统计
type TranslationMiddleware struct {
	next         providers.TranslationProvider
	statsManager *StatsManager
}

var _ providers.TranslationProvider = (*TranslationMiddleware)(nil)

// WrapTranslationProvider 包装机器翻译提供商
func WrapTranslationProvider(next providers.TranslationProvider, statsManager *StatsManager) *TranslationMiddleware {
	return &TranslationMiddleware{next: next, statsManager: statsManager}
}

// Translate 带统计的翻译方法
func (m *TranslationMiddleware) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	start := time.Now()
	resp, err := m.next.Translate(ctx, req)

	result := RequestResult{
		Success: err == nil,
		Latency: time.Since(start),
	}
	if err != nil {
		result.ErrorType = classifyError(err)
	} else if resp != nil {
		result.Echo = fold.String(strings.TrimSpace(resp.Text)) == fold.String(strings.TrimSpace(req.Text))
	}

	m.statsManager.RecordRequest(m.next.GetName(), "-", result)
	return resp, err
}

// GetName 获取被包装提供商名称
func (m *TranslationMiddleware) GetName() string {
	return m.next.GetName()
}

// GeneratorMiddleware 为文本生成提供商记录调用统计
type GeneratorMiddleware struct {
	next         providers.Generator
	statsManager *StatsManager
	modelName    string
}

var _ providers.Generator = (*GeneratorMiddleware)(nil)

// WrapGenerator 包装文本生成提供商
func WrapGenerator(next providers.Generator, statsManager *StatsManager, modelName string) *GeneratorMiddleware {
	return &GeneratorMiddleware{next: next, statsManager: statsManager, modelName: modelName}
}

// Generate 带统计的生成方法
func (m *GeneratorMiddleware) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	start := time.Now()
	resp, err := m.next.Generate(ctx, req)

	model := req.Model
	if model == "" {
		model = m.modelName
	}

	result := RequestResult{
		Success: err == nil,
		Latency: time.Since(start),
	}
	if err != nil {
		result.ErrorType = classifyError(err)
	} else if resp != nil {
		result.TokensIn = resp.TokensIn
		result.TokensOut = resp.TokensOut
		result.HasReasoningTags = strings.Contains(resp.Text, "<think>")
	}

	m.statsManager.RecordRequest(m.next.GetName(), model, result)
	return resp, err
}

// GetName 获取被包装提供商名称
func (m *GeneratorMiddleware) GetName() string {
	return m.next.GetName()
}

// classifyError 分类错误类型
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return providers.CodeTimeout
	}

	if pe, ok := providers.IsProviderError(err); ok {
		return pe.Code
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return providers.CodeTimeout
	case strings.Contains(errStr, "connection") || strings.Contains(errStr, "network"):
		return "network_error"
	default:
		return "unknown_error"
	}
}
