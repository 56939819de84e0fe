package engine

import (
	"context"
	"fmt"

	"github.com/iWorld-y/news_insight/internal/analyzer"
	"github.com/iWorld-y/news_insight/internal/config"
	"github.com/iWorld-y/news_insight/internal/llm"
	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/pacing"
	"github.com/iWorld-y/news_insight/internal/pipeline"
	"github.com/iWorld-y/news_insight/internal/report"
	"github.com/iWorld-y/news_insight/internal/retry"
	"github.com/iWorld-y/news_insight/internal/source"
	"github.com/iWorld-y/news_insight/internal/storage"
	"github.com/iWorld-y/news_insight/internal/validator"
)

// Engine 按配置装配来源、模型、输出与存储
type Engine struct {
	cfg      *config.Config
	store    *storage.Storage
	pipeline *pipeline.Pipeline
	writer   *report.Writer
}

// NewEngine 创建引擎实例；数据库连接失败只记录日志，不影响文件输出
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	provider, err := source.NewProvider(cfg.News)
	if err != nil {
		return nil, fmt.Errorf("新闻来源初始化失败: %w", err)
	}
	var enricher *source.Enricher
	if cfg.News.EnrichShortContent {
		enricher = source.NewEnricher(cfg.News.EnrichTimeout, cfg.News.MinContentLength)
	}
	fetcher := source.NewFetcher(provider, enricher, cfg.News.MinContentLength)

	analyzerModel, err := llm.NewChatModel(ctx, cfg.Analyzer)
	if err != nil {
		return nil, fmt.Errorf("分析模型初始化失败: %w", err)
	}
	validatorModel, err := llm.NewChatModel(ctx, cfg.Validator)
	if err != nil {
		return nil, fmt.Errorf("校验模型初始化失败: %w", err)
	}

	an := analyzer.New(analyzerModel, pacing.New(cfg.Analyzer.Pacing), analyzer.Config{
		Model:          cfg.Analyzer.Model,
		Vocabulary:     cfg.Vocabulary,
		Retry:          retryPolicy(cfg.Analyzer.Retry),
		RequestTimeout: cfg.Analyzer.RequestTimeout,
		ContentLimit:   cfg.Analyzer.ContentLimit,
	})
	va := validator.New(validatorModel, pacing.New(cfg.Validator.Pacing), validator.Config{
		Model:          cfg.Validator.Model,
		Vocabulary:     cfg.Vocabulary,
		Retry:          retryPolicy(cfg.Validator.Retry),
		RequestTimeout: cfg.Validator.RequestTimeout,
		Temperature:    cfg.Validator.Temperature,
		MaxTokens:      cfg.Validator.MaxTokens,
		ContentLimit:   cfg.Validator.ContentLimit,
	})
	logger.Log.Infof("模型已配置: analyzer=%s/%s validator=%s/%s",
		cfg.Analyzer.Provider, cfg.Analyzer.Model, cfg.Validator.Provider, cfg.Validator.Model)

	writer := report.NewWriter(cfg.Output.Dir, cfg.Output.HTML)

	e := &Engine{cfg: cfg, writer: writer}
	var store pipeline.RecordStore
	if cfg.DB.Driver != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅生成文件输出。", err)
		} else {
			logger.Log.Infof("已成功连接到数据库: %s", cfg.DB.Driver)
			e.store = s
			store = s
		}
	} else {
		logger.Log.Debug("未配置数据库信息，跳过数据库连接")
	}

	e.pipeline = pipeline.New(fetcher, an, va, writer, store, cfg.Vocabulary, provider.Name())
	return e, nil
}

// RunOptions 运行选项，零值字段使用配置中的值
type RunOptions struct {
	Query            string
	Language         string
	MaxArticles      int
	ProgressCallback func(pipeline.State)
}

// Run 执行一次完整的抓取、分析、校验与报告流程
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*pipeline.Result, error) {
	q := source.Query{
		Text:        e.cfg.News.Query,
		Language:    e.cfg.News.Language,
		MaxArticles: e.cfg.News.MaxArticles,
		SortBy:      e.cfg.News.SortBy,
	}
	if opts.Query != "" {
		q.Text = opts.Query
	}
	if opts.Language != "" {
		q.Language = opts.Language
	}
	if opts.MaxArticles > 0 {
		q.MaxArticles = opts.MaxArticles
	}
	return e.pipeline.Run(ctx, pipeline.Options{Query: q, ProgressCallback: opts.ProgressCallback})
}

// OutputDir 报告输出目录
func (e *Engine) OutputDir() string { return e.writer.Dir() }

// Store 未连接数据库时为 nil
func (e *Engine) Store() *storage.Storage { return e.store }

// Close 释放数据库连接
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Multiplier:  cfg.Multiplier,
		MaxDelay:    cfg.MaxDelay,
	}
}

