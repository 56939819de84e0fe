package parser

import (
	"encoding/json"
	"strings"

	"github.com/iWorld-y/news_insight/internal/model"
)

const (
	reasoningLimit   = 200
	defaultReasoning = "Validation completed"
)

// ValidationResult 校验结果解析的两种形态，Decoded 为 false 时来自关键词兜底
type ValidationResult struct {
	Validation model.Validation
	Decoded    bool
	Err        error
}

// ParseValidation 将清洗后的文本解析为 Validation
// 只有文本不是 JSON 对象时才按关键词兜底：包含 correct 或 accurate 即视为通过
// 单个字段类型不符时忽略该字段并使用默认值
func ParseValidation(text string, articleID int, modelName string) ValidationResult {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &fields); err != nil {
		return ValidationResult{
			Validation: KeywordValidation(text, articleID, modelName),
			Err:        err,
		}
	}
	isValid := decodeField[*bool](fields, "is_valid")
	result := decodeField[*string](fields, "result")
	reasoning := decodeField[*string](fields, "reasoning")
	corrections := decodeField[map[string]any](fields, "corrections")

	v := model.Validation{
		ArticleID:   articleID,
		IsValid:     true,
		Reasoning:   defaultReasoning,
		Corrections: map[string]string{},
		Model:       modelName,
	}
	if isValid != nil {
		v.IsValid = *isValid
	}
	if result != nil && strings.TrimSpace(*result) != "" {
		v.Result = *result
	} else {
		v.Result = resultLabel(v.IsValid)
	}
	if reasoning != nil {
		v.Reasoning = *reasoning
	}
	for _, field := range []string{model.FieldGist, model.FieldSentiment, model.FieldTone} {
		val, ok := corrections[field].(string)
		if !ok {
			continue
		}
		s := strings.TrimSpace(val)
		if s == "" || strings.EqualFold(s, "null") {
			continue
		}
		v.Corrections[field] = s
	}
	return ValidationResult{Validation: v, Decoded: true}
}

// decodeField 字段缺失或类型不符时返回零值
func decodeField[T any](fields map[string]json.RawMessage, key string) T {
	var zero T
	raw, ok := fields[key]
	if !ok {
		return zero
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero
	}
	return v
}

// KeywordValidation 关键词兜底，不会失败
func KeywordValidation(text string, articleID int, modelName string) model.Validation {
	lower := strings.ToLower(text)
	isValid := strings.Contains(lower, "correct") || strings.Contains(lower, "accurate")
	return model.Validation{
		ArticleID:   articleID,
		IsValid:     isValid,
		Result:      resultLabel(isValid),
		Reasoning:   truncateRunes(text, reasoningLimit),
		Corrections: map[string]string{},
		Model:       modelName,
		Degraded:    true,
	}
}

// FailedValidation 远程调用最终失败时的结果，按通过处理并标记降级
func FailedValidation(articleID int, modelName string, cause error) model.Validation {
	v := model.Validation{
		ArticleID:   articleID,
		IsValid:     true,
		Result:      model.ResultValidationFailed,
		Corrections: map[string]string{},
		Model:       modelName,
		Degraded:    true,
	}
	if cause != nil {
		v.Reasoning = "Error: " + cause.Error()
		v.Error = cause.Error()
	}
	return v
}

func resultLabel(valid bool) string {
	if valid {
		return model.ResultCorrect
	}
	return model.ResultIssues
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
