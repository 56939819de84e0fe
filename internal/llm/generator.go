package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrEmptyResponse 模型返回空内容（可能被安全策略拦截），可重试
var ErrEmptyResponse = errors.New("empty response from model")

// Generator 单次生成接口，与 eino 的 BaseChatModel.Generate 一致
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// StatusError 带 HTTP 状态码的远程错误
type StatusError struct {
	Code int
	Body string
	Err  error
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("status %d", e.Code)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode 实现 retry.StatusCoder
func (e *StatusError) StatusCode() int { return e.Code }

// Complete 执行一次远程调用并返回文本内容，system 为空时只发送用户消息
func Complete(ctx context.Context, gen Generator, system, user string, opts ...model.Option) (string, error) {
	messages := make([]*schema.Message, 0, 2)
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	messages = append(messages, schema.UserMessage(user))

	resp, err := gen.Generate(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Content, nil
}
