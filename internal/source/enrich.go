package source

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/news_insight/internal/logger"
)

// ExtractFunc 抓取网页正文
type ExtractFunc func(ctx context.Context, pageURL string) (string, error)

// Enricher 对正文过短的条目抓取原网页补全正文
type Enricher struct {
	extract ExtractFunc
	minLen  int
}

// NewEnricher 使用 go-readability 抓取网页正文
func NewEnricher(timeout time.Duration, minLen int) *Enricher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewEnricherWith(func(ctx context.Context, pageURL string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		article, err := readability.FromURL(pageURL, timeout)
		if err != nil {
			return "", err
		}
		return article.TextContent, nil
	}, minLen)
}

// NewEnricherWith 使用自定义抓取函数
func NewEnricherWith(extract ExtractFunc, minLen int) *Enricher {
	return &Enricher{extract: extract, minLen: minLen}
}

// Enrich 失败时保留原条目，只记录日志
func (e *Enricher) Enrich(ctx context.Context, items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	for i, it := range out {
		if it.URL == "" {
			continue
		}
		text := strings.TrimSpace(deref(it.Description) + " " + deref(it.Content))
		if utf8.RuneCountInString(stripTruncation(text)) >= e.minLen {
			continue
		}

		body, err := e.extract(ctx, it.URL)
		if err != nil {
			logger.Log.WithField("url", it.URL).Warnf("抓取正文失败: %v", err)
			continue
		}
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		out[i].Content = &body
	}
	return out
}
