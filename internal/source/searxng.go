package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SearXNG SearXNG 客户端，使用 news 分类
type SearXNG struct {
	baseURL string
	client  *http.Client
}

var _ Provider = (*SearXNG)(nil)

// NewSearXNG 创建一个新的 SearXNG 客户端，timeout 单位为秒
func NewSearXNG(baseURL string, timeout int) *SearXNG {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &SearXNG{
		baseURL: baseURL,
		client:  &http.Client{Timeout: t},
	}
}

func (c *SearXNG) Name() string { return "searxng" }

type searxngResponse struct {
	Query   string          `json:"query"`
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Engine        string  `json:"engine"`
	PublishedDate *string `json:"publishedDate"`
	Score         float64 `json:"score"`
}

// Search 执行搜索，结果按 MaxArticles 截断
func (c *SearXNG) Search(ctx context.Context, q Query) ([]Item, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/search"

	params := u.Query()
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("categories", "news")
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	// 添加 User-Agent 避免被简单的反爬虫策略拦截
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, &APIError{Provider: c.Name(), StatusCode: res.StatusCode, Message: string(body)}
	}

	var resp searxngResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	items := make([]Item, 0, len(resp.Results))
	for _, r := range resp.Results {
		if q.MaxArticles > 0 && len(items) >= q.MaxArticles {
			break
		}
		var published string
		if r.PublishedDate != nil {
			published = *r.PublishedDate
		}
		items = append(items, Item{
			Title:       r.Title,
			Description: strPtr(r.Content),
			SourceName:  strPtr(r.Engine),
			URL:         r.URL,
			PublishedAt: published,
		})
	}
	return items, nil
}
