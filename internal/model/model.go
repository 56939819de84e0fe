package model

import (
	"slices"
	"strings"
	"time"
)

// Sentiment 文章情感倾向
type Sentiment string

// Tone 文章语气
type Tone string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

const (
	ToneUrgent      Tone = "urgent"
	ToneAnalytical  Tone = "analytical"
	ToneSatirical   Tone = "satirical"
	ToneBalanced    Tone = "balanced"
	ToneCritical    Tone = "critical"
	ToneCelebratory Tone = "celebratory"
	ToneAlarming    Tone = "alarming"
	ToneInformative Tone = "informative"
)

const (
	// UnknownSentinel 作者或来源缺失时的占位值
	UnknownSentinel = "Unknown"
	// AnalysisFailedGist 分析失败时的固定摘要
	AnalysisFailedGist = "Analysis failed"

	ResultCorrect          = "✓ Correct"
	ResultIssues           = "✗ Issues Found"
	ResultValidationFailed = "⚠ Validation Failed"
)

// Correction 字段名
const (
	FieldGist      = "gist"
	FieldSentiment = "sentiment"
	FieldTone      = "tone"
)

// Article 经过规范化的新闻文章，创建后不再修改
type Article struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	FullText    string    `json:"full_text"`
	Source      string    `json:"source"`
	Author      string    `json:"author"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Analysis 第一个模型对文章的结构化分析
type Analysis struct {
	ArticleID int       `json:"article_id"`
	Gist      string    `json:"gist"`
	Sentiment Sentiment `json:"sentiment"`
	Tone      Tone      `json:"tone"`
	Model     string    `json:"model"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Validation 第二个模型对分析结果的校验
type Validation struct {
	ArticleID   int               `json:"article_id"`
	IsValid     bool              `json:"is_valid"`
	Result      string            `json:"result"`
	Reasoning   string            `json:"reasoning"`
	Corrections map[string]string `json:"corrections"`
	Model       string            `json:"validator_model"`
	// Degraded 为 true 表示结果来自兜底逻辑而非模型的结构化输出
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Pair 待校验的文章与分析
type Pair struct {
	Article  Article
	Analysis Analysis
}

// CombinedRecord 按文章 ID 聚合的输出单元
type CombinedRecord struct {
	Article    Article    `json:"article"`
	Analysis   Analysis   `json:"analysis"`
	Validation Validation `json:"validation"`
}

// Consistent 三个部分是否指向同一篇文章
func (r CombinedRecord) Consistent() bool {
	return r.Analysis.ArticleID == r.Article.ID && r.Validation.ArticleID == r.Article.ID
}

// Vocabulary 情感与语气的封闭取值集合
type Vocabulary struct {
	Sentiments       []Sentiment `yaml:"sentiments" json:"sentiments"`
	Tones            []Tone      `yaml:"tones" json:"tones"`
	DefaultSentiment Sentiment   `yaml:"default_sentiment" json:"default_sentiment"`
	DefaultTone      Tone        `yaml:"default_tone" json:"default_tone"`
}

// DefaultVocabulary 默认取值集合
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Sentiments: []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral},
		Tones: []Tone{
			ToneUrgent, ToneAnalytical, ToneSatirical, ToneBalanced,
			ToneCritical, ToneCelebratory, ToneAlarming, ToneInformative,
		},
		DefaultSentiment: SentimentNeutral,
		DefaultTone:      ToneInformative,
	}
}

// HasSentiment 判断取值是否属于情感集合
func (v Vocabulary) HasSentiment(s Sentiment) bool {
	return slices.Contains(v.Sentiments, s)
}

// HasTone 判断取值是否属于语气集合
func (v Vocabulary) HasTone(t Tone) bool {
	return slices.Contains(v.Tones, t)
}

// NormalizeSentiment 统一大小写与空白，不在集合内时返回默认值和 false
func (v Vocabulary) NormalizeSentiment(raw string) (Sentiment, bool) {
	s := Sentiment(strings.ToLower(strings.TrimSpace(raw)))
	if v.HasSentiment(s) {
		return s, true
	}
	return v.DefaultSentiment, false
}

// NormalizeTone 统一大小写与空白，不在集合内时返回默认值和 false
func (v Vocabulary) NormalizeTone(raw string) (Tone, bool) {
	t := Tone(strings.ToLower(strings.TrimSpace(raw)))
	if v.HasTone(t) {
		return t, true
	}
	return v.DefaultTone, false
}

// SentimentList 逗号分隔的情感取值，用于 Prompt
func (v Vocabulary) SentimentList(sep string) string {
	parts := make([]string, len(v.Sentiments))
	for i, s := range v.Sentiments {
		parts[i] = string(s)
	}
	return strings.Join(parts, sep)
}

// ToneList 逗号分隔的语气取值，用于 Prompt
func (v Vocabulary) ToneList(sep string) string {
	parts := make([]string, len(v.Tones))
	for i, t := range v.Tones {
		parts[i] = string(t)
	}
	return strings.Join(parts, sep)
}
