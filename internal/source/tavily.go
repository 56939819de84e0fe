package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const tavilyBaseURL = "https://api.tavily.com/search"

// Tavily Tavily 搜索客户端，topic 固定为 news
type Tavily struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Provider = (*Tavily)(nil)

// NewTavily 创建一个新的 Tavily 客户端
func NewTavily(apiKey, baseURL string, client *http.Client) *Tavily {
	if baseURL == "" {
		baseURL = tavilyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Tavily{apiKey: apiKey, baseURL: baseURL, client: client}
}

func (c *Tavily) Name() string { return "tavily" }

type tavilyRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	Topic             string `json:"topic,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeRawContent bool   `json:"include_raw_content,omitempty"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    string  `json:"raw_content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// Search Tavily 的 content 是摘要，raw_content 是正文
func (c *Tavily) Search(ctx context.Context, q Query) ([]Item, error) {
	payload, err := json.Marshal(tavilyRequest{
		Query:             q.Text,
		SearchDepth:       "basic",
		Topic:             "news",
		MaxResults:        q.MaxArticles,
		IncludeRawContent: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+c.apiKey)
	req.Header.Add("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: c.Name(), StatusCode: res.StatusCode, Message: string(body)}
	}

	var resp tavilyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	items := make([]Item, 0, len(resp.Results))
	for _, r := range resp.Results {
		items = append(items, Item{
			Title:       r.Title,
			Description: strPtr(r.Content),
			Content:     strPtr(r.RawContent),
			SourceName:  strPtr(hostOf(r.URL)),
			URL:         r.URL,
			PublishedAt: r.PublishedDate,
		})
	}
	return items, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
