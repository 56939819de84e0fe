package source

import (
	"context"
	"fmt"
	"time"

	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/model"
)

// Fetcher 组合来源、正文补全与规范化
type Fetcher struct {
	provider Provider
	enricher *Enricher
	minLen   int
	now      func() time.Time
}

// NewFetcher enricher 可以为 nil，minLen 非正数时使用 DefaultMinContentLength
func NewFetcher(provider Provider, enricher *Enricher, minLen int) *Fetcher {
	if minLen <= 0 {
		minLen = DefaultMinContentLength
	}
	return &Fetcher{
		provider: provider,
		enricher: enricher,
		minLen:   minLen,
		now:      time.Now,
	}
}

// Fetch 拉取并规范化文章，结果可能为空
func (f *Fetcher) Fetch(ctx context.Context, q Query) ([]model.Article, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	logger.Log.Infof("正在获取新闻: provider=%s query=%q max=%d", f.provider.Name(), q.Text, q.MaxArticles)

	items, err := f.provider.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}
	if len(items) == 0 {
		logger.Log.Warnf("未找到相关新闻: %q", q.Text)
		return nil, nil
	}
	if len(items) > q.MaxArticles {
		items = items[:q.MaxArticles]
	}

	if f.enricher != nil {
		items = f.enricher.Enrich(ctx, items)
	}

	articles := Normalize(items, f.minLen, f.now())
	logger.Log.Infof("成功获取 %d 篇文章（原始 %d 条）", len(articles), len(items))
	return articles, nil
}
