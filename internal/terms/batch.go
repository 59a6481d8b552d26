package terms

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Resolution 单个术语的解析结果
type Resolution struct {
	Term   string
	Text   string
	Source Source
}

// BatchTranslator 并发解析一组术语
type BatchTranslator struct {
	resolver    *Resolver
	concurrency int
	logger      *zap.Logger
}

// NewBatchTranslator 创建批量翻译器；concurrency 为 0 表示每个术语一个 goroutine
func NewBatchTranslator(resolver *Resolver, concurrency int, logger *zap.Logger) *BatchTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchTranslator{
		resolver:    resolver,
		concurrency: concurrency,
		logger:      logger,
	}
}

// TranslateAll 按输入顺序返回翻译结果
func (bt *BatchTranslator) TranslateAll(ctx context.Context, terms []string) []string {
	resolutions := bt.ResolveAll(ctx, terms)
	out := make([]string, len(resolutions))
	for i, res := range resolutions {
		out[i] = res.Text
	}
	return out
}

// ResolveAll 并发解析，结果与输入一一对应；单个失败不会取消其他术语
func (bt *BatchTranslator) ResolveAll(ctx context.Context, terms []string) []Resolution {
	results := make([]Resolution, len(terms))
	if len(terms) == 0 {
		return results
	}

	var sem chan struct{}
	if bt.concurrency > 0 {
		sem = make(chan struct{}, bt.concurrency)
	}

	var wg sync.WaitGroup
	for i, term := range terms {
		wg.Add(1)
		go func(i int, term string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			text, source := bt.resolver.ResolveWithSource(ctx, term)
			results[i] = Resolution{Term: term, Text: text, Source: source}
		}(i, term)
	}
	wg.Wait()

	bt.logger.Debug("batch term resolution completed", zap.Int("terms", len(terms)))
	return results
}
