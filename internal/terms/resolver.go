package terms

import (
	"context"
	"fmt"
	"strings"

	"github.com/nerdneilsfield/go-md-translator/internal/logger"
	"github.com/nerdneilsfield/go-md-translator/pkg/dictionary"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/transliterate"
	"go.uber.org/zap"
)

// Source 标识术语结果来自解析链的哪一步
type Source int

const (
	SourceEmpty Source = iota
	SourceDictionary
	SourceMachine
	SourceTransliteration
)

func (s Source) String() string {
	switch s {
	case SourceDictionary:
		return "dictionary"
	case SourceMachine:
		return "machine"
	case SourceTransliteration:
		return "transliteration"
	default:
		return "empty"
	}
}

// TermTranslator 短文本机器翻译
type TermTranslator interface {
	TranslateTerm(ctx context.Context, term string, source, target language.Code) (string, error)
}

// Failure 单个术语机器翻译失败
type Failure struct {
	Term     string
	Provider string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("translate term %q via %s: %v", f.Term, f.Provider, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ProviderTranslator 将机器翻译提供商适配为 TermTranslator
type ProviderTranslator struct {
	provider providers.TranslationProvider
}

// NewProviderTranslator 创建适配器
func NewProviderTranslator(provider providers.TranslationProvider) *ProviderTranslator {
	return &ProviderTranslator{provider: provider}
}

// TranslateTerm 翻译单个术语
func (p *ProviderTranslator) TranslateTerm(ctx context.Context, term string, source, target language.Code) (string, error) {
	resp, err := p.provider.Translate(ctx, &providers.ProviderRequest{
		Text:           term,
		SourceLanguage: string(source),
		TargetLanguage: string(target),
	})
	if err != nil {
		return "", &Failure{Term: term, Provider: p.provider.GetName(), Err: err}
	}
	return resp.Text, nil
}

// Resolver 依次通过词典、机器翻译、音译解析术语
type Resolver struct {
	dict     *dictionary.Dictionary
	mt       TermTranslator
	translit transliterate.Transliterator
	source   language.Info
	target   language.Info
	logger   *zap.Logger
}

// NewResolver 创建术语解析器；dict 可以为 nil
func NewResolver(dict *dictionary.Dictionary, mt TermTranslator, translit transliterate.Transliterator,
	source, target language.Info, logger *zap.Logger) *Resolver {
	if dict == nil {
		dict = dictionary.Empty()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		dict:     dict,
		mt:       mt,
		translit: translit,
		source:   source,
		target:   target,
		logger:   logger,
	}
}

// Resolve 解析单个术语，从不返回错误
func (r *Resolver) Resolve(ctx context.Context, term string) string {
	text, _ := r.ResolveWithSource(ctx, term)
	return text
}

// ResolveWithSource 解析单个术语并返回结果来源
func (r *Resolver) ResolveWithSource(ctx context.Context, term string) (string, Source) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return "", SourceEmpty
	}

	if curated, ok := r.dict.Lookup(trimmed); ok {
		r.logger.Debug("term resolved from dictionary",
			zap.String("term", trimmed), zap.String("result", curated))
		return curated, SourceDictionary
	}

	translated, err := r.mt.TranslateTerm(ctx, trimmed, r.source.Code, r.target.Code)
	switch {
	case err != nil:
		r.logger.Warn("machine translation failed, transliterating",
			zap.String("term", trimmed), zap.Error(err))
	case strings.TrimSpace(translated) == "":
		r.logger.Warn("machine translation returned empty text, transliterating",
			zap.String("term", trimmed))
	case dictionary.Fold(translated) == dictionary.Fold(trimmed):
		r.logger.Debug("machine translation echoed input, transliterating",
			zap.String("term", trimmed))
	default:
		r.logger.Debug("term resolved by machine translation",
			zap.String("term", trimmed), logger.PreviewField("result", translated))
		return translated, SourceMachine
	}

	// 转写作用于调用方传入的原始术语
	return r.translit.Transliterate(term), SourceTransliteration
}
