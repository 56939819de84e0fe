package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsAPI newsapi.org 客户端
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Provider = (*NewsAPI)(nil)

// NewNewsAPI 创建 NewsAPI 客户端，baseURL 为空时使用官方地址
func NewNewsAPI(apiKey, baseURL string, client *http.Client) *NewsAPI {
	if baseURL == "" {
		baseURL = newsAPIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NewsAPI{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *NewsAPI) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	} `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"publishedAt"`
	Content     *string `json:"content"`
}

// Search 调用 /everything 接口
func (c *NewsAPI) Search(ctx context.Context, q Query) ([]Item, error) {
	u, err := url.Parse(c.baseURL + "/everything")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	params := u.Query()
	params.Set("q", q.Text)
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	params.Set("pageSize", strconv.Itoa(min(q.MaxArticles, 100)))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		if res.StatusCode != http.StatusOK {
			return nil, &APIError{Provider: c.Name(), StatusCode: res.StatusCode, Message: string(body)}
		}
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}
	if res.StatusCode != http.StatusOK || resp.Status != "ok" {
		return nil, &APIError{Provider: c.Name(), StatusCode: res.StatusCode, Code: resp.Code, Message: resp.Message}
	}

	items := make([]Item, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		var title string
		if a.Title != nil {
			title = *a.Title
		}
		items = append(items, Item{
			Title:       title,
			Description: a.Description,
			Content:     a.Content,
			SourceName:  a.Source.Name,
			Author:      a.Author,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return items, nil
}
