package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/news_insight/internal/model"
)

// ErrMissingGist 解码成功但 gist 缺失或为空
var ErrMissingGist = errors.New("gist is missing or empty")

// Coercion 一次取值修正
type Coercion struct {
	Field string
	Raw   string
	Value string
	// Missing 为 true 表示字段缺失，而不是取值越界
	Missing bool
}

// AnalysisResult 分析结果解析的两种形态：
// Decoded 为 true 时 Analysis 来自模型输出，否则是 FailedAnalysis 生成的兜底值，Err 记录原因
type AnalysisResult struct {
	Analysis  model.Analysis
	Decoded   bool
	Err       error
	Coercions []Coercion
}

type rawAnalysis struct {
	Gist      *string `json:"gist"`
	Sentiment *string `json:"sentiment"`
	Tone      *string `json:"tone"`
}

// ParseAnalysis 将清洗后的文本解析为 Analysis，不返回 error
func ParseAnalysis(text string, articleID int, modelName string, vocab model.Vocabulary) AnalysisResult {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return AnalysisResult{
			Analysis: FailedAnalysis(articleID, modelName, vocab, fmt.Errorf("invalid JSON response: %w", err)),
			Err:      err,
		}
	}
	if raw.Gist == nil || strings.TrimSpace(*raw.Gist) == "" {
		return AnalysisResult{
			Analysis: FailedAnalysis(articleID, modelName, vocab, ErrMissingGist),
			Err:      ErrMissingGist,
		}
	}

	res := AnalysisResult{
		Decoded: true,
		Analysis: model.Analysis{
			ArticleID: articleID,
			Gist:      strings.TrimSpace(*raw.Gist),
			Model:     modelName,
			Success:   true,
		},
	}

	if raw.Sentiment == nil {
		res.Analysis.Sentiment = vocab.DefaultSentiment
		res.Analysis.Success = false
		res.Coercions = append(res.Coercions, Coercion{Field: model.FieldSentiment, Value: string(vocab.DefaultSentiment), Missing: true})
	} else {
		s, ok := vocab.NormalizeSentiment(*raw.Sentiment)
		res.Analysis.Sentiment = s
		if !ok {
			res.Coercions = append(res.Coercions, Coercion{Field: model.FieldSentiment, Raw: *raw.Sentiment, Value: string(s)})
		}
	}

	if raw.Tone == nil {
		res.Analysis.Tone = vocab.DefaultTone
		res.Analysis.Success = false
		res.Coercions = append(res.Coercions, Coercion{Field: model.FieldTone, Value: string(vocab.DefaultTone), Missing: true})
	} else {
		t, ok := vocab.NormalizeTone(*raw.Tone)
		res.Analysis.Tone = t
		if !ok {
			res.Coercions = append(res.Coercions, Coercion{Field: model.FieldTone, Raw: *raw.Tone, Value: string(t)})
		}
	}

	if !res.Analysis.Success {
		res.Analysis.Error = "missing sentiment or tone in model response"
	}
	return res
}

// FailedAnalysis 分析失败时的安全默认值
func FailedAnalysis(articleID int, modelName string, vocab model.Vocabulary, cause error) model.Analysis {
	a := model.Analysis{
		ArticleID: articleID,
		Gist:      model.AnalysisFailedGist,
		Sentiment: vocab.DefaultSentiment,
		Tone:      vocab.DefaultTone,
		Model:     modelName,
		Success:   false,
	}
	if cause != nil {
		a.Error = cause.Error()
	}
	return a
}
