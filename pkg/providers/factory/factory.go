package factory

import (
	"fmt"
	"time"

	"github.com/nerdneilsfield/go-md-translator/internal/config"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/deepl"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/deeplx"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/google"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/libretranslate"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/ollama"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/openai"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/raw"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/retry"
	"github.com/nerdneilsfield/go-md-translator/pkg/providers/stats"
)

// ProviderFactory 提供商工厂
type ProviderFactory struct {
	statsManager *stats.StatsManager
	timeout      time.Duration
}

// New 创建新的提供商工厂；statsManager 为 nil 时不记录统计
func New(statsManager *stats.StatsManager, timeout time.Duration) *ProviderFactory {
	return &ProviderFactory{
		statsManager: statsManager,
		timeout:      timeout,
	}
}

// CreateGenerator 根据配置创建文本生成提供商
func (f *ProviderFactory) CreateGenerator(backend config.BackendConfig) (providers.Generator, error) {
	var (
		generator providers.Generator
		model     string // 统计中使用的实际模型名
	)

	switch backend.Provider {
	case "ollama":
		cfg := ollama.DefaultConfig()
		f.applyBase(&cfg.BaseConfig, backend)
		cfg.RetryConfig = f.retryConfig(backend)
		if backend.Model != "" {
			cfg.Model = backend.Model
		}
		cfg.Temperature = float32(backend.Temperature)
		generator = ollama.New(cfg)
		model = cfg.Model
	case "openai":
		cfg := openai.DefaultConfig()
		f.applyBase(&cfg.BaseConfig, backend)
		if backend.Model != "" {
			cfg.Model = backend.Model
		}
		if backend.Temperature > 0 {
			cfg.Temperature = float32(backend.Temperature)
		}
		generator = openai.New(cfg)
		model = cfg.Model
	default:
		return nil, fmt.Errorf("unsupported prose provider: %s", backend.Provider)
	}

	if f.statsManager != nil {
		return stats.WrapGenerator(generator, f.statsManager, model), nil
	}
	return generator, nil
}

// CreateTranslationProvider 根据配置创建机器翻译提供商
func (f *ProviderFactory) CreateTranslationProvider(backend config.BackendConfig) (providers.TranslationProvider, error) {
	var provider providers.TranslationProvider

	switch backend.Provider {
	case "google":
		cfg := google.DefaultConfig()
		f.applyBase(&cfg.BaseConfig, backend)
		cfg.RetryConfig = f.retryConfig(backend)
		provider = google.New(cfg)
	case "libretranslate":
		cfg := libretranslate.DefaultConfig()
		f.applyBase(&cfg.BaseConfig, backend)
		cfg.RetryConfig = f.retryConfig(backend)
		provider = libretranslate.New(cfg)
	case "deeplx":
		cfg := deeplx.DefaultConfig()
		f.applyBase(&cfg.BaseConfig, backend)
		cfg.RetryConfig = f.retryConfig(backend)
		provider = deeplx.New(cfg)
	case "deepl":
		cfg := deepl.DefaultConfig()
		f.applyBase(&cfg.BaseConfig, backend)
		cfg.RetryConfig = f.retryConfig(backend)
		provider = deepl.New(cfg)
	case "raw", "none":
		provider = raw.New()
	default:
		return nil, fmt.Errorf("unsupported term provider: %s", backend.Provider)
	}

	if f.statsManager != nil {
		return stats.WrapTranslationProvider(provider, f.statsManager), nil
	}
	return provider, nil
}

// applyBase 将后端配置写入基础配置，空值保留提供商默认值
func (f *ProviderFactory) applyBase(base *providers.BaseConfig, backend config.BackendConfig) {
	if backend.Endpoint != "" {
		base.APIEndpoint = backend.Endpoint
	}
	if backend.APIKey != "" {
		base.APIKey = backend.APIKey
	}
	if f.timeout > 0 {
		base.Timeout = f.timeout
	}
	base.MaxRetries = backend.MaxRetries
}

func (f *ProviderFactory) retryConfig(backend config.BackendConfig) retry.RetryConfig {
	cfg := retry.DefaultRetryConfig()
	cfg.MaxRetries = backend.MaxRetries
	return cfg
}
