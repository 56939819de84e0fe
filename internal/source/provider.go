package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider 新闻来源
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Item, error)
}

// Query 一次新闻查询
type Query struct {
	Text        string
	Language    string
	MaxArticles int
	SortBy      string
}

// Validate 查询参数校验
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("query cannot be empty")
	}
	if q.MaxArticles < 1 || q.MaxArticles > 100 {
		return fmt.Errorf("max_articles must be between 1 and 100, got %d", q.MaxArticles)
	}
	return nil
}

// Item 来源返回的原始条目，指针字段为 nil 表示来源未提供
type Item struct {
	Title       string
	Description *string
	Content     *string
	SourceName  *string
	Author      *string
	URL         string
	PublishedAt string
}

// APIError 来源接口返回的错误
type APIError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s api error (status %d, %s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
