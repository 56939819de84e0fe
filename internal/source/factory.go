package source

import (
	"fmt"
	"net/http"

	"github.com/iWorld-y/news_insight/internal/config"
)

// NewProvider 根据配置创建新闻来源
func NewProvider(cfg config.NewsConfig) (Provider, error) {
	switch cfg.Provider {
	case "", config.ProviderNewsAPI:
		if cfg.NewsAPI.APIKey == "" {
			return nil, fmt.Errorf("newsapi api key is missing")
		}
		return NewNewsAPI(cfg.NewsAPI.APIKey, cfg.NewsAPI.BaseURL, http.DefaultClient), nil

	case config.ProviderTavily:
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return NewTavily(cfg.Tavily.APIKey, cfg.Tavily.BaseURL, http.DefaultClient), nil

	case config.ProviderSearXNG:
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return NewSearXNG(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown news provider: %s", cfg.Provider)
	}
}
