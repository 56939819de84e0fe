package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// contentGenerator genai.Models 的子集
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig Gemini 模型配置
type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   int
}

// GeminiChatModel 将 genai 客户端适配为 eino 的 BaseChatModel
type GeminiChatModel struct {
	models      contentGenerator
	model       string
	temperature *float32
	maxTokens   int
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)

// NewGeminiChatModel 创建 Gemini 模型
func NewGeminiChatModel(ctx context.Context, cfg GeminiConfig) (*GeminiChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key cannot be empty")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiChatModel(client.Models, cfg), nil
}

func newGeminiChatModel(models contentGenerator, cfg GeminiConfig) *GeminiChatModel {
	return &GeminiChatModel{
		models:      models,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Generate 实现 model.BaseChatModel
func (g *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	base := &model.Options{Temperature: g.temperature, Model: &g.model}
	if g.maxTokens > 0 {
		base.MaxTokens = &g.maxTokens
	}
	options := model.GetCommonOptions(base, opts...)

	system, contents := toContents(input)
	if len(contents) == 0 {
		return nil, errors.New("gemini: no user content in request")
	}

	gc := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.Temperature != nil {
		gc.Temperature = genai.Ptr(*options.Temperature)
	}
	if options.MaxTokens != nil && *options.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(*options.MaxTokens)
	}
	modelName := g.model
	if options.Model != nil && *options.Model != "" {
		modelName = *options.Model
	}

	resp, err := g.models.GenerateContent(ctx, modelName, contents, gc)
	if err != nil {
		return nil, convertError(err)
	}
	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return schema.AssistantMessage(text, nil), nil
}

// Stream 不做真正的流式输出，整段结果作为单个分片返回
func (g *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := g.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// toContents system 消息合并为 SystemInstruction，其余按角色转换
func toContents(input []*schema.Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(input))
	for _, m := range input {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			if system == nil {
				system = genai.NewContentFromText(m.Content, genai.RoleUser)
			} else {
				system.Parts = append(system.Parts, genai.NewPartFromText(m.Content))
			}
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return system, contents
}

func convertError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{Code: apiErr.Code, Body: apiErr.Message, Err: err}
	}
	return err
}
