package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nerdneilsfield/go-md-translator/internal/frontmatter"
	"github.com/nerdneilsfield/go-md-translator/internal/logger"
	"github.com/nerdneilsfield/go-md-translator/internal/prose"
	"github.com/nerdneilsfield/go-md-translator/internal/terms"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"go.uber.org/zap"
)

// DefaultMaxAttempts 默认最大尝试次数
const DefaultMaxAttempts = 3

var (
	// ErrMissingTitle 源文档缺少标题
	ErrMissingTitle = errors.New("source document has no title")
	// ErrValidationFailed 多次尝试后输出仍未通过校验
	ErrValidationFailed = errors.New("translated document failed validation")
)

// Options 流水线选项
type Options struct {
	Source           language.Info
	Target           language.Info
	Model            string
	Policy           frontmatter.FieldPolicy
	TranslateContent bool
	MaxAttempts      int
}

// FieldStatus 字段处理结果
type FieldStatus string

const (
	StatusTranslated  FieldStatus = "translated"
	StatusFailed      FieldStatus = "failed"
	StatusPassthrough FieldStatus = "passthrough"
	StatusSkipped     FieldStatus = "skipped"
)

// FieldReport 单个字段的处理摘要
type FieldReport struct {
	Field   string
	Status  FieldStatus
	Sources map[terms.Source]int
}

// Report 一次运行的结果
type Report struct {
	RunID      string
	InputPath  string
	OutputPath string
	Attempts   int
	Fields     []FieldReport
	Duration   time.Duration
}

// Pipeline 单文档翻译流水线
type Pipeline struct {
	opts     Options
	prose    *prose.Translator
	batch    *terms.BatchTranslator
	resolver *terms.Resolver
	logger   *zap.Logger

	// 校验函数，测试中可替换
	validate func(path string) error
}

// New 创建流水线
func New(opts Options, proseTranslator *prose.Translator, batch *terms.BatchTranslator,
	resolver *terms.Resolver, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Policy == nil {
		opts.Policy = frontmatter.DefaultPolicy()
	}
	return &Pipeline{
		opts:     opts,
		prose:    proseTranslator,
		batch:    batch,
		resolver: resolver,
		logger:   log,
		validate: frontmatter.Validate,
	}
}

// Run 翻译 inputPath 并写入 outputPath，校验失败时删除输出并重试
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:      uuid.New().String(),
		InputPath:  inputPath,
		OutputPath: outputPath,
	}
	log := p.logger.With(
		zap.String("run_id", report.RunID),
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("target", string(p.opts.Target.Code)))

	var lastErr error
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Attempts = attempt

		doc, err := frontmatter.Load(inputPath)
		if err != nil {
			return report, err
		}
		if doc.Title() == "" {
			return report, fmt.Errorf("%s: %w", inputPath, ErrMissingTitle)
		}

		fields, body, summary := p.translate(ctx, doc)
		report.Fields = summary

		frontMatter, err := frontmatter.Assemble(fields, p.opts.Policy)
		if err != nil {
			return report, err
		}
		if err := write(outputPath, frontmatter.Render(frontMatter, body)); err != nil {
			return report, err
		}

		lastErr = p.validate(outputPath)
		if lastErr == nil {
			report.Duration = time.Since(start)
			log.Info("document translated",
				zap.Int("attempts", attempt),
				zap.Duration("duration", report.Duration))
			return report, nil
		}

		log.Warn("translated document failed validation, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.opts.MaxAttempts),
			zap.Error(lastErr))
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove invalid output", zap.Error(err))
		}
	}

	report.Duration = time.Since(start)
	return report, fmt.Errorf("%w after %d attempts: %w", ErrValidationFailed, p.opts.MaxAttempts, lastErr)
}

// translate 翻译所有启用的字段与正文
func (p *Pipeline) translate(ctx context.Context, doc *frontmatter.Document) (map[frontmatter.Field]frontmatter.Value, string, []FieldReport) {
	fields := make(map[frontmatter.Field]frontmatter.Value, len(doc.Fields))
	var summary []FieldReport

	for _, field := range frontmatter.CanonicalOrder {
		value, ok := doc.Get(field)
		if !ok {
			continue
		}
		if !p.opts.Policy.Enabled(field) {
			summary = append(summary, FieldReport{Field: string(field), Status: StatusSkipped})
			continue
		}

		switch field {
		case frontmatter.FieldTitle, frontmatter.FieldDescription:
			text := p.translateProse(ctx, field, value.Str)
			fields[field] = frontmatter.String(text)
			summary = append(summary, FieldReport{Field: string(field), Status: proseStatus(text)})

		case frontmatter.FieldTags, frontmatter.FieldCategories:
			out, sources := p.resolveList(ctx, value.List)
			fields[field] = frontmatter.List(out...)
			summary = append(summary, FieldReport{Field: string(field), Status: StatusTranslated, Sources: sources})

		case frontmatter.FieldAuthor:
			if value.Kind == frontmatter.KindList {
				out, sources := p.resolveList(ctx, value.List)
				fields[field] = frontmatter.List(out...)
				summary = append(summary, FieldReport{Field: string(field), Status: StatusTranslated, Sources: sources})
				continue
			}
			text, source := p.resolver.ResolveWithSource(ctx, value.Str)
			fields[field] = frontmatter.String(text)
			summary = append(summary, FieldReport{
				Field:   string(field),
				Status:  StatusTranslated,
				Sources: map[terms.Source]int{source: 1},
			})

		default:
			fields[field] = value
			summary = append(summary, FieldReport{Field: string(field), Status: StatusPassthrough})
		}
	}

	body := doc.Body
	if p.opts.TranslateContent && strings.TrimSpace(doc.Body) != "" {
		p.logger.Debug("translating content", logger.PreviewField("content", doc.Body))
		translated := p.prose.TranslateContent(ctx, doc.Body, p.opts.Source, p.opts.Target, p.opts.Model)
		body = joinBody(doc.Body, translated)
		summary = append(summary, FieldReport{Field: string(prose.FieldContent), Status: proseStatus(translated)})
	}

	return fields, body, summary
}

func (p *Pipeline) translateProse(ctx context.Context, field frontmatter.Field, text string) string {
	p.logger.Debug("translating field", zap.String("field", string(field)), logger.PreviewField("text", text))
	if field == frontmatter.FieldTitle {
		return p.prose.TranslateTitle(ctx, text, p.opts.Source, p.opts.Target, p.opts.Model)
	}
	return p.prose.TranslateDescription(ctx, text, p.opts.Source, p.opts.Target, p.opts.Model)
}

func (p *Pipeline) resolveList(ctx context.Context, items []string) ([]string, map[terms.Source]int) {
	resolutions := p.batch.ResolveAll(ctx, items)
	out := make([]string, 0, len(resolutions))
	sources := make(map[terms.Source]int)
	for _, res := range resolutions {
		sources[res.Source]++
		out = append(out, res.Text)
	}
	return out, sources
}

func proseStatus(text string) FieldStatus {
	if prose.IsErrorMarker(text) {
		return StatusFailed
	}
	return StatusTranslated
}

// joinBody 保留原正文开头的空行，并以单个换行结尾
func joinBody(original, translated string) string {
	lead := original[:len(original)-len(strings.TrimLeft(original, "\r\n"))]
	return lead + strings.TrimRight(translated, "\r\n") + "\n"
}

func write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
