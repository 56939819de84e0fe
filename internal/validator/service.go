package validator

import (
	"context"
	"errors"
	"iter"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/news_insight/internal/llm"
	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/model"
	"github.com/iWorld-y/news_insight/internal/pacing"
	"github.com/iWorld-y/news_insight/internal/parser"
	"github.com/iWorld-y/news_insight/internal/retry"
)

const (
	defaultTemperature  = float32(0.3)
	defaultMaxTokens    = 500
	defaultContentLimit = 1000
)

// Config 校验服务配置，构造后不再修改
type Config struct {
	Model          string
	Vocabulary     model.Vocabulary
	Retry          retry.Policy
	RequestTimeout time.Duration
	// Temperature 为 nil 时使用 0.3
	Temperature  *float32
	MaxTokens    int
	ContentLimit int
}

// Service 使用第二个模型校验分析结果
type Service struct {
	gen   llm.Generator
	pacer pacing.Pacer
	cfg   Config
}

// New 创建校验服务
func New(gen llm.Generator, pacer pacing.Pacer, cfg Config) *Service {
	if cfg.Temperature == nil {
		t := defaultTemperature
		cfg.Temperature = &t
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.ContentLimit <= 0 {
		cfg.ContentLimit = defaultContentLimit
	}
	return &Service{gen: gen, pacer: pacer, cfg: cfg}
}

// Model 模型名称
func (s *Service) Model() string { return s.cfg.Model }

// ValidateOne 校验单条分析，模型侧失败时返回降级结果
func (s *Service) ValidateOne(ctx context.Context, article model.Article, analysis model.Analysis) model.Validation {
	log := logger.Log.WithFields(logrus.Fields{"article_id": article.ID, "model": s.cfg.Model})
	log.Infof("正在校验文章分析: %s", truncate(article.Title, 50))

	prompt := BuildPrompt(article.Title, truncate(article.FullText, s.cfg.ContentLimit), analysis, s.cfg.Vocabulary)
	opts := []einomodel.Option{
		einomodel.WithTemperature(*s.cfg.Temperature),
		einomodel.WithMaxTokens(s.cfg.MaxTokens),
	}

	policy := s.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).Warnf("校验请求失败，稍后重试: %v", err)
	}

	raw, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		if s.cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
			defer cancel()
		}
		return llm.Complete(ctx, s.gen, "", prompt, opts...)
	})
	if err != nil {
		if errors.Is(err, retry.ErrFatal) {
			log.WithField("class", "fatal").Errorf("校验失败，错误不可重试: %v", err)
		} else {
			log.WithField("class", "exhausted").Warnf("校验失败，重试次数已用尽: %v", err)
		}
		return parser.FailedValidation(article.ID, s.cfg.Model, err)
	}

	res := parser.ParseValidation(parser.Sanitize(raw), article.ID, s.cfg.Model)
	if !res.Decoded {
		log.WithField("raw", truncate(raw, 200)).Errorf("无法解析校验结果，使用关键词判断: %v", res.Err)
	}
	log.Infof("校验完成: %s", res.Validation.Result)
	return res.Validation
}

// ValidateBatch 按输入顺序逐条校验，每次调用前由 Pacer 控制节奏
func (s *Service) ValidateBatch(ctx context.Context, pairs []model.Pair) iter.Seq[model.Validation] {
	return func(yield func(model.Validation) bool) {
		for _, p := range pairs {
			if err := s.pacer.Wait(ctx); err != nil {
				logger.Log.Warnf("校验批处理中断: %v", err)
				return
			}
			if !yield(s.ValidateOne(ctx, p.Article, p.Analysis)) {
				return
			}
		}
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
