package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/news_insight/internal/model"
)

const (
	configPathEnv     = "NEWS_INSIGHT_CONFIG"
	defaultConfigPath = "configs/config.yaml"

	newsAPIKeyEnv    = "NEWSAPI_API_KEY"
	geminiKeyEnv     = "GEMINI_API_KEY"
	openRouterKeyEnv = "OPENROUTER_API_KEY"
	tavilyKeyEnv     = "TAVILY_API_KEY"
	queryEnv         = "NEWS_QUERY"
	maxArticlesEnv   = "MAX_ARTICLES"
	languageEnv      = "NEWS_LANGUAGE"
	outputDirEnv     = "OUTPUT_DIR"
	logLevelEnv      = "LOG_LEVEL"
	databaseDSNEnv   = "DATABASE_DSN"
)

// Provider 名称
const (
	ProviderNewsAPI = "newsapi"
	ProviderTavily  = "tavily"
	ProviderSearXNG = "searxng"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Pacing 策略
const (
	PacingFixed       = "fixed"
	PacingTokenBucket = "token_bucket"
)

// Config 项目配置结构体
type Config struct {
	Log        LogConfig        `yaml:"log"`
	News       NewsConfig       `yaml:"news"`
	Analyzer   LLMConfig        `yaml:"analyzer"`
	Validator  LLMConfig        `yaml:"validator"`
	Vocabulary model.Vocabulary `yaml:"vocabulary"`
	Output     OutputConfig     `yaml:"output"`
	DB         DBConfig         `yaml:"db"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// NewsConfig 新闻来源配置
type NewsConfig struct {
	Provider           string        `yaml:"provider"`
	Query              string        `yaml:"query"`
	Language           string        `yaml:"language"`
	MaxArticles        int           `yaml:"max_articles"`
	SortBy             string        `yaml:"sort_by"`
	MinContentLength   int           `yaml:"min_content_length"`
	EnrichShortContent bool          `yaml:"enrich_short_content"`
	EnrichTimeout      time.Duration `yaml:"enrich_timeout"`
	NewsAPI            NewsAPIConfig `yaml:"newsapi"`
	Tavily             TavilyConfig  `yaml:"tavily"`
	SearXNG            SearXNGConfig `yaml:"searxng"`
}

// NewsAPIConfig NewsAPI 配置
type NewsAPIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// LLMConfig 单个模型服务的配置，分析与校验各持有一份
type LLMConfig struct {
	Provider       string        `yaml:"provider"`
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	Temperature    *float32      `yaml:"temperature"`
	MaxTokens      int           `yaml:"max_tokens"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ContentLimit Prompt 中文章正文的最大字符数，0 表示不截断
	ContentLimit int          `yaml:"content_limit"`
	Pacing       PacingConfig `yaml:"pacing"`
	Retry        RetryConfig  `yaml:"retry"`
}

// PacingConfig 批处理节奏控制
type PacingConfig struct {
	Strategy string        `yaml:"strategy"`
	Interval time.Duration `yaml:"interval"`
	Burst    int           `yaml:"burst"`
}

// RetryConfig 重试与退避参数
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Multiplier  float64       `yaml:"multiplier"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// OutputConfig 输出目录配置
type OutputConfig struct {
	Dir  string `yaml:"dir"`
	HTML bool   `yaml:"html"`
}

// DBConfig 数据库相关配置，Driver 为空时不落库
type DBConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
}

// Default 内置默认配置
func Default() *Config {
	analyzerTemp := float32(0.4)
	validatorTemp := float32(0.3)
	return &Config{
		Log: LogConfig{Level: "info"},
		News: NewsConfig{
			Provider:         ProviderNewsAPI,
			Query:            "India politics",
			Language:         "en",
			MaxArticles:      12,
			SortBy:           "publishedAt",
			MinContentLength: 50,
			EnrichTimeout:    30 * time.Second,
			NewsAPI:          NewsAPIConfig{BaseURL: "https://newsapi.org/v2"},
			Tavily:           TavilyConfig{BaseURL: "https://api.tavily.com/search"},
			SearXNG:          SearXNGConfig{Timeout: 30},
		},
		Analyzer: LLMConfig{
			Provider:       ProviderGemini,
			Model:          "gemini-2.5-flash",
			Temperature:    &analyzerTemp,
			RequestTimeout: 60 * time.Second,
			Pacing:         PacingConfig{Strategy: PacingFixed, Interval: time.Second, Burst: 1},
			Retry:          RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2, MaxDelay: 30 * time.Second},
		},
		Validator: LLMConfig{
			Provider:       ProviderOpenAI,
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "mistralai/mistral-7b-instruct",
			Temperature:    &validatorTemp,
			MaxTokens:      500,
			RequestTimeout: 30 * time.Second,
			ContentLimit:   1000,
			Pacing:         PacingConfig{Strategy: PacingFixed, Interval: 2 * time.Second, Burst: 1},
			Retry:          RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2, MaxDelay: 30 * time.Second},
		},
		Vocabulary: model.DefaultVocabulary(),
		Output:     OutputConfig{Dir: "output", HTML: true},
	}
}

// Load 加载配置：默认值 -> YAML 文件 -> .env 与环境变量
// path 为空时依次尝试 $NEWS_INSIGHT_CONFIG 与 configs/config.yaml，文件不存在不算错误
func Load(path string) (*Config, error) {
	// .env 可选，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(configPathEnv)
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// 使用默认配置
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.News.NewsAPI.APIKey = v
	}
	if v := os.Getenv(tavilyKeyEnv); v != "" {
		c.News.Tavily.APIKey = v
	}
	if v := os.Getenv(geminiKeyEnv); v != "" && c.Analyzer.Provider == ProviderGemini {
		c.Analyzer.APIKey = v
	}
	if v := os.Getenv(openRouterKeyEnv); v != "" {
		if c.Validator.Provider == ProviderOpenAI {
			c.Validator.APIKey = v
		}
		if c.Analyzer.Provider == ProviderOpenAI && c.Analyzer.APIKey == "" {
			c.Analyzer.APIKey = v
		}
	}
	if v := os.Getenv(queryEnv); v != "" {
		c.News.Query = v
	}
	if v := os.Getenv(maxArticlesEnv); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", maxArticlesEnv, v, err)
		}
		c.News.MaxArticles = n
	}
	if v := os.Getenv(languageEnv); v != "" {
		c.News.Language = v
	}
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.DB.DSN = v
		if c.DB.Driver == "" {
			c.DB.Driver = "postgres"
		}
	}
	return nil
}

// Validate 校验配置是否完整可用
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.News.Query) == "" {
		errs = append(errs, errors.New("news.query is empty"))
	}
	if c.News.MaxArticles < 1 || c.News.MaxArticles > 100 {
		errs = append(errs, fmt.Errorf("news.max_articles must be between 1 and 100, got %d", c.News.MaxArticles))
	}
	if c.News.MinContentLength <= 0 {
		errs = append(errs, errors.New("news.min_content_length must be positive"))
	}
	switch c.News.Provider {
	case ProviderNewsAPI:
		if c.News.NewsAPI.APIKey == "" {
			errs = append(errs, fmt.Errorf("newsapi api key is missing (set %s)", newsAPIKeyEnv))
		}
	case ProviderTavily:
		if c.News.Tavily.APIKey == "" {
			errs = append(errs, fmt.Errorf("tavily api key is missing (set %s)", tavilyKeyEnv))
		}
	case ProviderSearXNG:
		if c.News.SearXNG.BaseURL == "" {
			errs = append(errs, errors.New("searxng base url is missing"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown news provider: %s", c.News.Provider))
	}

	errs = append(errs, c.Analyzer.validate("analyzer")...)
	errs = append(errs, c.Validator.validate("validator")...)

	v := c.Vocabulary
	if len(v.Sentiments) == 0 || len(v.Tones) == 0 {
		errs = append(errs, errors.New("vocabulary must list sentiments and tones"))
	}
	if !v.HasSentiment(v.DefaultSentiment) {
		errs = append(errs, fmt.Errorf("vocabulary.default_sentiment %q is not in vocabulary.sentiments", v.DefaultSentiment))
	}
	if !v.HasTone(v.DefaultTone) {
		errs = append(errs, fmt.Errorf("vocabulary.default_tone %q is not in vocabulary.tones", v.DefaultTone))
	}

	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir is empty"))
	}
	switch c.DB.Driver {
	case "", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown db driver: %s", c.DB.Driver))
	}

	return errors.Join(errs...)
}

func (l LLMConfig) validate(name string) []error {
	var errs []error
	switch l.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("%s.provider unknown: %s", name, l.Provider))
	}
	if l.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s.api_key is missing", name))
	}
	if l.Model == "" {
		errs = append(errs, fmt.Errorf("%s.model is empty", name))
	}
	if l.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s.retry.max_attempts must be >= 1", name))
	}
	if l.Retry.BaseDelay < 0 || l.Retry.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("%s.retry needs base_delay >= 0 and multiplier >= 1", name))
	}
	if l.Pacing.Interval < 0 {
		errs = append(errs, fmt.Errorf("%s.pacing.interval must not be negative", name))
	}
	switch l.Pacing.Strategy {
	case "", PacingFixed, PacingTokenBucket:
	default:
		errs = append(errs, fmt.Errorf("%s.pacing.strategy unknown: %s", name, l.Pacing.Strategy))
	}
	return errs
}
