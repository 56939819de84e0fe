package analyzer

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/news_insight/internal/llm"
	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/model"
	"github.com/iWorld-y/news_insight/internal/pacing"
	"github.com/iWorld-y/news_insight/internal/parser"
	"github.com/iWorld-y/news_insight/internal/retry"
)

// Config 分析服务配置，构造后不再修改
type Config struct {
	Model          string
	Vocabulary     model.Vocabulary
	Retry          retry.Policy
	RequestTimeout time.Duration
	// ContentLimit Prompt 中正文的最大字符数，0 表示不截断
	ContentLimit int
}

// Service 调用主模型生成 gist / sentiment / tone
type Service struct {
	gen   llm.Generator
	pacer pacing.Pacer
	cfg   Config
}

// New 创建分析服务
func New(gen llm.Generator, pacer pacing.Pacer, cfg Config) *Service {
	return &Service{gen: gen, pacer: pacer, cfg: cfg}
}

// Model 模型名称
func (s *Service) Model() string { return s.cfg.Model }

// AnalyzeOne 分析单篇文章，模型侧的失败不会返回 error，而是得到 Success=false 的结果
func (s *Service) AnalyzeOne(ctx context.Context, article model.Article) model.Analysis {
	log := logger.Log.WithFields(logrus.Fields{"article_id": article.ID, "model": s.cfg.Model})
	log.Infof("正在分析文章: %s", truncate(article.Title, 50))

	prompt := BuildPrompt(article.Title, truncate(article.FullText, s.cfg.ContentLimit), s.cfg.Vocabulary)

	policy := s.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).Warnf("分析请求失败，稍后重试: %v", err)
	}

	raw, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		if s.cfg.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
			defer cancel()
		}
		return llm.Complete(ctx, s.gen, "", prompt)
	})
	if err != nil {
		logFailure(log, err)
		return parser.FailedAnalysis(article.ID, s.cfg.Model, s.cfg.Vocabulary, err)
	}

	res := parser.ParseAnalysis(parser.Sanitize(raw), article.ID, s.cfg.Model, s.cfg.Vocabulary)
	if !res.Decoded {
		log.WithField("raw", truncate(raw, 200)).Errorf("无法解析分析结果: %v", res.Err)
		return res.Analysis
	}
	for _, c := range res.Coercions {
		if c.Missing {
			log.Warnf("响应缺少字段 %s，使用默认值 %s", c.Field, c.Value)
		} else {
			log.Warnf("无效的 %s %q，使用默认值 %s", c.Field, c.Raw, c.Value)
		}
	}
	log.Info("文章分析完成")
	return res.Analysis
}

// AnalyzeBatch 按输入顺序逐篇分析，每次调用前由 Pacer 控制节奏
// ctx 取消后停止产出，调用方需检查 ctx.Err()
func (s *Service) AnalyzeBatch(ctx context.Context, articles []model.Article) iter.Seq[model.Analysis] {
	return func(yield func(model.Analysis) bool) {
		for _, a := range articles {
			if err := s.pacer.Wait(ctx); err != nil {
				logger.Log.Warnf("分析批处理中断: %v", err)
				return
			}
			if !yield(s.AnalyzeOne(ctx, a)) {
				return
			}
		}
	}
}

func logFailure(log *logrus.Entry, err error) {
	if errors.Is(err, retry.ErrFatal) {
		log.WithField("class", "fatal").Errorf("分析失败，错误不可重试: %v", err)
		return
	}
	log.WithField("class", "exhausted").Warnf("分析失败，重试次数已用尽: %v", err)
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
