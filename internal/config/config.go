package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 前置元数据字段名，与 frontmatter 包保持一致
var knownFields = []string{"title", "description", "date", "draft", "author", "tags", "categories"}

// 支持的后端
var (
	ProseProviders = []string{"ollama", "openai"}
	TermProviders  = []string{"google", "libretranslate", "deeplx", "deepl", "raw"}
)

// BackendConfig 翻译后端配置
type BackendConfig struct {
	Provider    string  `mapstructure:"provider"`
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxRetries  int     `mapstructure:"max_retries"` // 传输层重试次数
}

// Config 保存翻译器的所有配置
type Config struct {
	SourceLang       string          `mapstructure:"source_lang"`
	TargetLang       string          `mapstructure:"target_lang"`
	Prose            BackendConfig   `mapstructure:"prose"`
	Terms            BackendConfig   `mapstructure:"terms"`
	DictDir          string          `mapstructure:"dict_dir"`
	RequestTimeout   int             `mapstructure:"request_timeout"` // 请求超时时间（秒）
	MaxAttempts      int             `mapstructure:"max_attempts"`    // 校验失败后的最大尝试次数
	Concurrency      int             `mapstructure:"concurrency"`     // 术语并发数，0 表示不限制
	TranslateContent bool            `mapstructure:"translate_content"`
	Fields           map[string]bool `mapstructure:"fields"`
	Debug            bool            `mapstructure:"debug"`
}

// Timeout 以 time.Duration 返回请求超时
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// FieldEnabled 判断字段是否启用，未配置的字段视为启用
func (c *Config) FieldEnabled(name string) bool {
	enabled, ok := c.Fields[strings.ToLower(name)]
	return !ok || enabled
}

// DisableField 禁用字段
func (c *Config) DisableField(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !isKnownField(name) {
		return fmt.Errorf("unknown front matter field %q (known: %s)", name, strings.Join(knownFields, ", "))
	}
	if c.Fields == nil {
		c.Fields = make(map[string]bool)
	}
	c.Fields[name] = false
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error

	if !contains(ProseProviders, c.Prose.Provider) {
		errs = append(errs, fmt.Errorf("unsupported prose provider %q (supported: %s)",
			c.Prose.Provider, strings.Join(ProseProviders, ", ")))
	}
	if !contains(TermProviders, c.Terms.Provider) {
		errs = append(errs, fmt.Errorf("unsupported term provider %q (supported: %s)",
			c.Terms.Provider, strings.Join(TermProviders, ", ")))
	}
	if c.Prose.Provider == "openai" && c.Prose.APIKey == "" && c.Prose.Endpoint == "" {
		errs = append(errs, errors.New("prose provider openai requires api_key (or an endpoint of a compatible server)"))
	}
	if (c.Terms.Provider == "google" || c.Terms.Provider == "deepl") && c.Terms.APIKey == "" {
		errs = append(errs, fmt.Errorf("term provider %s requires api_key", c.Terms.Provider))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %d", c.RequestTimeout))
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	for name := range c.Fields {
		if !isKnownField(name) {
			errs = append(errs, fmt.Errorf("unknown front matter field %q in fields", name))
		}
	}

	return errors.Join(errs...)
}

// LoadConfig 从文件、.env 和环境变量加载配置
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// 设置默认值
	setDefaults(v)

	// 如果配置路径已指定，则直接使用
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".md-translator")
		v.SetConfigType("yaml")
	}

	// MDT_PROSE_API_KEY -> prose.api_key
	v.SetEnvPrefix("MDT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("prose.api_key", "MDT_PROSE_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("terms.api_key", "MDT_TERMS_API_KEY", "GOOGLE_TRANSLATE_API_KEY", "DEEPL_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &config, nil
}

// loadDotEnv 加载 .env 文件，不覆盖已有环境变量；文件不存在时忽略
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SaveConfig 将配置保存到文件
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, ".md-translator.yaml")
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.MergeConfigMap(structToMap(config)); err != nil {
		return err
	}

	// 创建父目录（如果不存在）
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return v.WriteConfig()
}

// NewDefaultConfig 创建一个新的默认配置
// endpoint 与 model 留空，由所选提供商使用自己的默认值
func NewDefaultConfig() *Config {
	return &Config{
		SourceLang: "en",
		Prose: BackendConfig{
			Provider:   "ollama",
			MaxRetries: 2,
		},
		Terms: BackendConfig{
			Provider:   "libretranslate",
			MaxRetries: 2,
		},
		DictDir:          "dictionaries",
		RequestTimeout:   120,
		MaxAttempts:      3,
		Concurrency:      0,
		TranslateContent: true,
		Fields:           defaultFields(),
	}
}

func defaultFields() map[string]bool {
	fields := make(map[string]bool, len(knownFields))
	for _, name := range knownFields {
		fields[name] = true
	}
	return fields
}

func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	for key, value := range structToMap(d) {
		switch key {
		case "prose", "terms", "fields":
			continue
		}
		v.SetDefault(key, value)
	}
	// 嵌套键逐个设置，保证环境变量在 Unmarshal 时生效
	for key, value := range backendToMap(d.Prose) {
		v.SetDefault("prose."+key, value)
	}
	for key, value := range backendToMap(d.Terms) {
		v.SetDefault("terms."+key, value)
	}
	for name, enabled := range d.Fields {
		v.SetDefault("fields."+name, enabled)
	}
}

// structToMap 将结构体转换为map
func structToMap(config *Config) map[string]interface{} {
	return map[string]interface{}{
		"source_lang":       config.SourceLang,
		"target_lang":       config.TargetLang,
		"prose":             backendToMap(config.Prose),
		"terms":             backendToMap(config.Terms),
		"dict_dir":          config.DictDir,
		"request_timeout":   config.RequestTimeout,
		"max_attempts":      config.MaxAttempts,
		"concurrency":       config.Concurrency,
		"translate_content": config.TranslateContent,
		"fields":            config.Fields,
		"debug":             config.Debug,
	}
}

func backendToMap(b BackendConfig) map[string]interface{} {
	return map[string]interface{}{
		"provider":    b.Provider,
		"endpoint":    b.Endpoint,
		"api_key":     b.APIKey,
		"model":       b.Model,
		"temperature": b.Temperature,
		"max_retries": b.MaxRetries,
	}
}

func isKnownField(name string) bool {
	return contains(knownFields, name)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
