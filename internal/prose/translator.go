package prose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nerdneilsfield/go-md-translator/internal/logger"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"go.uber.org/zap"
)

// ErrorMarker 翻译失败时写入字段的前缀，便于人工审阅时发现
const ErrorMarker = "[Error] "

// ErrEmptyResponse 模型返回内容清理后为空
var ErrEmptyResponse = errors.New("empty response from text generation backend")

// Field 长文本字段
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldContent     Field = "content"
)

// Error 长文本翻译失败
type Error struct {
	Field    Field
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("translate %s via %s: %v", e.Field, e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsErrorMarker 判断文本是否为失败标记
func IsErrorMarker(text string) bool {
	return strings.HasPrefix(text, ErrorMarker)
}

// Translator 通过文本生成后端翻译标题、摘要和正文
type Translator struct {
	generator providers.Generator
	logger    *zap.Logger
}

// NewTranslator 创建长文本翻译器
func NewTranslator(generator providers.Generator, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		generator: generator,
		logger:    logger,
	}
}

// TranslateTitle 翻译标题
func (t *Translator) TranslateTitle(ctx context.Context, text string, source, target language.Info, model string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	out, err := t.generate(ctx, FieldTitle, BuildTitlePrompt(text, source, target), model, func(raw string) string {
		return cleanTitle(text, raw)
	})
	if err != nil {
		return NormalizeQuotes(ErrorMarker + errors.Unwrap(err).Error())
	}
	return out
}

// TranslateDescription 翻译摘要
func (t *Translator) TranslateDescription(ctx context.Context, text string, source, target language.Info, model string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	out, err := t.generate(ctx, FieldDescription, BuildDescriptionPrompt(text, source, target), model, func(raw string) string {
		return cleanDescription(text, raw)
	})
	if err != nil {
		return NormalizeQuotes(ErrorMarker + errors.Unwrap(err).Error())
	}
	return out
}

// TranslateContent 翻译正文，保留正文中的双引号
func (t *Translator) TranslateContent(ctx context.Context, text string, source, target language.Info, model string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	out, err := t.generate(ctx, FieldContent, BuildContentPrompt(text, source, target), model, func(raw string) string {
		return raw
	})
	if err != nil {
		return ErrorMarker + errors.Unwrap(err).Error()
	}

	if want, got := CountCodeBlocks(text), CountCodeBlocks(out); want != got {
		t.logger.Warn("code block count changed during translation",
			zap.Int("source_blocks", want),
			zap.Int("translated_blocks", got))
	}
	return out
}

// generate 调用后端并清理输出；失败时返回 *Error
func (t *Translator) generate(ctx context.Context, field Field, prompt, model string, clean func(string) string) (string, error) {
	resp, err := t.generator.Generate(ctx, &providers.GenerateRequest{
		Model:  model,
		Prompt: prompt,
	})
	if err != nil {
		perr := &Error{Field: field, Provider: t.generator.GetName(), Err: err}
		t.logger.Error("prose translation failed", zap.String("field", string(field)), zap.Error(perr))
		return "", perr
	}

	out := clean(StripReasoning(resp.Text))
	if strings.TrimSpace(out) == "" {
		perr := &Error{Field: field, Provider: t.generator.GetName(), Err: ErrEmptyResponse}
		t.logger.Error("prose translation returned nothing", zap.String("field", string(field)))
		return "", perr
	}

	t.logger.Debug("prose translated",
		zap.String("field", string(field)),
		logger.PreviewField("result", out))
	return out, nil
}
