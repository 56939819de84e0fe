package source

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/model"
)

// DefaultMinContentLength 正文最少字符数
const DefaultMinContentLength = 50

// NewsAPI 会把截断的正文写成 "... [+1234 chars]"
var truncationMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

// Normalize 将原始条目转换为 Article
// 丢弃无标题、无正文或正文不足 minLen 个字符的条目；ID 取条目在原始结果中的序号（从 1 开始）
func Normalize(items []Item, minLen int, fetchedAt time.Time) []model.Article {
	articles := make([]model.Article, 0, len(items))
	for idx, it := range items {
		a, ok := normalizeItem(it, idx, minLen, fetchedAt)
		if ok {
			articles = append(articles, a)
		}
	}
	return articles
}

func normalizeItem(it Item, idx, minLen int, fetchedAt time.Time) (model.Article, bool) {
	title := strings.TrimSpace(it.Title)
	description := strings.TrimSpace(deref(it.Description))
	content := stripTruncation(strings.TrimSpace(deref(it.Content)))

	if title == "" || (description == "" && content == "") {
		logger.Log.WithField("index", idx).Warn("跳过缺少标题或正文的文章")
		return model.Article{}, false
	}

	fullText := stripTruncation(strings.TrimSpace(description + " " + content))
	if n := utf8.RuneCountInString(fullText); n < minLen {
		logger.Log.WithFields(logrus.Fields{"index": idx, "length": n}).Warn("文章正文过短，已跳过")
		return model.Article{}, false
	}

	return model.Article{
		ID:          idx + 1,
		Title:       title,
		Description: description,
		Content:     content,
		FullText:    fullText,
		Source:      orUnknown(deref(it.SourceName)),
		Author:      orUnknown(deref(it.Author)),
		URL:         strings.TrimSpace(it.URL),
		PublishedAt: parsePublished(it.PublishedAt, idx),
		FetchedAt:   fetchedAt,
	}, true
}

func stripTruncation(s string) string {
	s = truncationMarker.ReplaceAllString(s, "")
	s = strings.TrimSuffix(s, "[+")
	return strings.TrimSpace(s)
}

func parsePublished(raw string, idx int) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		logger.Log.WithField("index", idx).Warnf("无法解析发布时间 %q: %v", raw, err)
		return time.Time{}
	}
	return t.UTC()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.UnknownSentinel
	}
	return s
}
