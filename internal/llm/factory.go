package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/iWorld-y/news_insight/internal/config"
)

// NewChatModel 按配置创建模型：gemini 使用 genai，openai 走兼容接口（OpenRouter 等）
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s api key cannot be empty", cfg.Provider)
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiChatModel(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
	case config.ProviderOpenAI:
		oc := &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Timeout:     cfg.RequestTimeout,
			Temperature: cfg.Temperature,
		}
		if cfg.MaxTokens > 0 {
			maxTokens := cfg.MaxTokens
			oc.MaxTokens = &maxTokens
		}
		cm, err := openai.NewChatModel(ctx, oc)
		if err != nil {
			return nil, fmt.Errorf("LLM 初始化失败: %w", err)
		}
		return cm, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
