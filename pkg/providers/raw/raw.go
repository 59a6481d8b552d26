package raw

import (
	"context"

	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
)

// Provider 原样返回输入文本，术语解析会因此直接走音译
type Provider struct{}

var _ providers.TranslationProvider = (*Provider)(nil)

// New 创建新的 Raw 提供商
func New() *Provider {
	return &Provider{}
}

// Translate 直接返回原文
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &providers.ProviderResponse{
		Text:       req.Text,
		SourceLang: req.SourceLanguage,
		TargetLang: req.TargetLanguage,
		Metadata: map[string]interface{}{
			"type": "raw_passthrough",
		},
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "raw"
}
