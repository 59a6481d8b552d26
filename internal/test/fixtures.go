package test

import (
	"context"
	"strings"
	"sync"

	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
)

// DictTranslator 基于固定映射的确定性术语翻译，未命中时原样返回
type DictTranslator struct {
	Entries map[string]string
	Fail    map[string]error

	mu    sync.Mutex
	calls []string
}

// TranslateTerm 翻译单个术语
func (d *DictTranslator) TranslateTerm(ctx context.Context, term string, source, target language.Code) (string, error) {
	d.mu.Lock()
	d.calls = append(d.calls, term)
	d.mu.Unlock()

	if err, ok := d.Fail[term]; ok {
		return "", err
	}
	if out, ok := d.Entries[term]; ok {
		return out, nil
	}
	return term, nil
}

// Calls 返回调用过的术语
func (d *DictTranslator) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// EchoGenerator 确定性的生成器：取出提示词中 <text> 块的内容并加上前缀
type EchoGenerator struct {
	Prefix string
	Err    error
}

// Generate 根据提示词生成文本
func (e *EchoGenerator) Generate(ctx context.Context, req *providers.GenerateRequest) (*providers.GenerateResponse, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return &providers.GenerateResponse{Text: e.Prefix + PromptText(req.Prompt), Model: req.Model}, nil
}

// PromptText 提取提示词中 <text> 与 </text> 之间的原文
func PromptText(prompt string) string {
	start := strings.LastIndex(prompt, "<text>\n")
	end := strings.LastIndex(prompt, "\n</text>")
	if start < 0 || end < start {
		return prompt
	}
	return prompt[start+len("<text>\n") : end]
}

// GetName 获取提供商名称
func (e *EchoGenerator) GetName() string {
	return "echo"
}
