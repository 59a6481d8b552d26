package test

import (
	"context"

	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/stretchr/testify/mock"
)

// MockTermTranslator 模拟的术语机器翻译
type MockTermTranslator struct {
	mock.Mock
}

// TranslateTerm 翻译单个术语
func (m *MockTermTranslator) TranslateTerm(ctx context.Context, term string, source, target language.Code) (string, error) {
	args := m.Called(ctx, term, source, target)
	return args.String(0), args.Error(1)
}

// MockGenerator 模拟的文本生成提供商
type MockGenerator struct {
	mock.Mock
}

// Generate 根据提示词生成文本
func (m *MockGenerator) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*providers.GenerateResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetName 获取提供商名称
func (m *MockGenerator) GetName() string {
	return "mock-generator"
}

// MockTranslationProvider 模拟的机器翻译提供商
type MockTranslationProvider struct {
	mock.Mock
}

// Translate 执行翻译
func (m *MockTranslationProvider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*providers.ProviderResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetName 获取提供商名称
func (m *MockTranslationProvider) GetName() string {
	return "mock-mt"
}
