package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/go-md-translator/internal/config"
	"github.com/nerdneilsfield/go-md-translator/internal/frontmatter"
	"github.com/nerdneilsfield/go-md-translator/internal/logger"
	"github.com/nerdneilsfield/go-md-translator/internal/pipeline"
	"github.com/nerdneilsfield/go-md-translator/internal/prose"
	"github.com/nerdneilsfield/go-md-translator/internal/terms"
	"github.com/nerdneilsfield/go-md-translator/pkg/dictionary"
	"github.com/nerdneilsfield/go-md-translator/pkg/language"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/factory"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/stats"
	"github.com/nerdneilsfield/go-md-translator/pkg/transliterate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrInvalidLanguage 语言代码不在支持范围内
var ErrInvalidLanguage = errors.New("invalid language code")

// rootOptions 根命令的标志
type rootOptions struct {
	cfgFile       string
	sourceLang    string
	model         string
	output        string
	dictDir       string
	proseProvider string
	termProvider  string
	maxAttempts   int
	timeout       int
	concurrency   int
	noContent     bool
	skipFields    []string
	debugMode     bool
	listLanguages bool
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "md-translator [flags] <input-file> <target-lang>",
		Short: "翻译 Markdown 博客文章的前置元数据与正文",
		Long: `md-translator 将带有 YAML 前置元数据的 Markdown 文章翻译为另一种语言。

标题、摘要和正文交给大语言模型翻译；标签、分类和作者等短术语依次通过
词典、机器翻译和音译解析。输出文件会重新校验，校验失败时自动重试。

文本生成后端:
  - ollama: 本地 Ollama 服务
  - openai: OpenAI 及兼容接口

术语翻译后端:
  - libretranslate, google, deeplx, deepl, raw`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.listLanguages {
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("accepts 2 arg(s), received %d", len(args))
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.listLanguages {
				renderLanguages(cmd.OutOrStdout())
				return nil
			}
			return runTranslate(cmd, opts, args[0], args[1])
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.cfgFile, "config", "", "配置文件路径 (默认 $HOME/.md-translator.yaml 或 ./.md-translator.yaml)")
	flags.StringVarP(&opts.sourceLang, "source", "s", "en", "源语言代码")
	flags.StringVarP(&opts.model, "model", "m", "", "文本生成模型名称")
	flags.StringVarP(&opts.output, "output", "o", "", "输出文件路径 (默认根据语言代码推导)")
	flags.StringVar(&opts.dictDir, "dict-dir", "", "术语词典目录")
	flags.StringVar(&opts.proseProvider, "prose-provider", "", "文本生成后端 ("+strings.Join(config.ProseProviders, ", ")+")")
	flags.StringVar(&opts.termProvider, "term-provider", "", "术语翻译后端 ("+strings.Join(config.TermProviders, ", ")+")")
	flags.IntVar(&opts.maxAttempts, "max-attempts", 0, "校验失败时的最大尝试次数")
	flags.IntVar(&opts.timeout, "timeout", 0, "单次后端请求超时（秒）")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "术语翻译并发数，0 表示不限制")
	flags.BoolVar(&opts.noContent, "no-content", false, "只翻译前置元数据，正文原样保留")
	flags.StringArrayVar(&opts.skipFields, "skip-field", nil, "不输出的前置元数据字段，可重复")
	flags.BoolVar(&opts.debugMode, "debug", false, "启用调试日志")
	flags.BoolVar(&opts.listLanguages, "list-languages", false, "列出支持的语言")

	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newInitConfigCommand())

	return rootCmd
}

// runTranslate 执行单个文件的翻译
func runTranslate(cmd *cobra.Command, opts *rootOptions, inputPath, targetArg string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	cfg, err := config.LoadConfig(opts.cfgFile)
	if err != nil {
		return err
	}
	cfg.TargetLang = targetArg
	if err := applyFlags(cmd, opts, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source, err := resolveLanguage(errOut, "source", cfg.SourceLang)
	if err != nil {
		return err
	}
	target, err := resolveLanguage(errOut, "target", cfg.TargetLang)
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Debug)
	defer func() {
		_ = log.Sync()
	}()

	outputPath := opts.output
	if outputPath == "" {
		outputPath, err = pipeline.OutputPath(inputPath, source.Code, target.Code)
		if err != nil {
			return err
		}
	}

	statsManager := stats.NewStatsManager(log)
	providerFactory := factory.New(statsManager, cfg.Timeout())

	generator, err := providerFactory.CreateGenerator(cfg.Prose)
	if err != nil {
		return err
	}
	mt, err := providerFactory.CreateTranslationProvider(cfg.Terms)
	if err != nil {
		return err
	}

	dict, err := dictionary.Load(cfg.DictDir, target.Code)
	if err != nil {
		return err
	}
	log.Info("dictionary loaded",
		zap.String("source", dict.Source()),
		zap.Int("entries", dict.Len()))

	resolver := terms.NewResolver(dict, terms.NewProviderTranslator(mt),
		transliterate.ForLanguage(target, log), source, target, log)

	p := pipeline.New(pipeline.Options{
		Source:           source,
		Target:           target,
		Model:            cfg.Prose.Model,
		Policy:           fieldPolicy(cfg),
		TranslateContent: cfg.TranslateContent,
		MaxAttempts:      cfg.MaxAttempts,
	},
		prose.NewTranslator(generator, log),
		terms.NewBatchTranslator(resolver, cfg.Concurrency, log),
		resolver,
		log)

	report, err := p.Run(cmd.Context(), inputPath, outputPath)
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(errOut, "Translation failed: %v\n", err)
		return err
	}

	printSummary(out, report, source, target)
	statsManager.Render(out)
	return nil
}

// applyFlags 使用命令行参数覆盖配置
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("source") || cfg.SourceLang == "" {
		cfg.SourceLang = opts.sourceLang
	}
	if flags.Changed("model") {
		cfg.Prose.Model = opts.model
	}
	if flags.Changed("dict-dir") {
		cfg.DictDir = opts.dictDir
	}
	if flags.Changed("prose-provider") {
		cfg.Prose.Provider = opts.proseProvider
	}
	if flags.Changed("term-provider") {
		cfg.Terms.Provider = opts.termProvider
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = opts.maxAttempts
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = opts.timeout
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if flags.Changed("no-content") {
		cfg.TranslateContent = !opts.noContent
	}
	if flags.Changed("debug") {
		cfg.Debug = opts.debugMode
	}
	for _, name := range opts.skipFields {
		if err := cfg.DisableField(name); err != nil {
			return err
		}
	}
	return nil
}

// fieldPolicy 由配置生成字段输出策略
func fieldPolicy(cfg *config.Config) frontmatter.FieldPolicy {
	policy := make(frontmatter.FieldPolicy, len(frontmatter.CanonicalOrder))
	for _, field := range frontmatter.CanonicalOrder {
		policy[field] = cfg.FieldEnabled(string(field))
	}
	return policy
}

// resolveLanguage 校验语言代码，无效时输出建议和支持列表
func resolveLanguage(w io.Writer, role, code string) (language.Info, error) {
	info, err := language.Lookup(code)
	if err == nil {
		return info, nil
	}

	color.New(color.FgRed, color.Bold).Fprintf(w, "Invalid %s language code: %q\n", role, code)
	if suggestions := suggestLanguages(code); len(suggestions) > 0 {
		names := make([]string, len(suggestions))
		for i, s := range suggestions {
			names[i] = s.String()
		}
		color.New(color.FgYellow).Fprintf(w, "Did you mean: %s?\n", strings.Join(names, ", "))
	}
	fmt.Fprintln(w)
	renderLanguages(w)

	return language.Info{}, fmt.Errorf("%w: %s %q", ErrInvalidLanguage, role, code)
}
