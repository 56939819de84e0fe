package analyzer

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_insight/internal/llm"
	"github.com/iWorld-y/news_insight/internal/model"
	"github.com/iWorld-y/news_insight/internal/retry"
)

type reply struct {
	content string
	err     error
}

type fakeGenerator struct {
	replies []reply
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.prompts = append(f.prompts, input[len(input)-1].Content)
	if len(f.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return schema.AssistantMessage(r.content, nil), nil
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func newTestService(gen *fakeGenerator, pacer *countingPacer) (*Service, *[]time.Duration) {
	var delays []time.Duration
	return New(gen, pacer, Config{
		Model:      "gemini-2.5-flash",
		Vocabulary: model.DefaultVocabulary(),
		Retry: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			Multiplier:  2,
			Sleep: func(_ context.Context, d time.Duration) error {
				delays = append(delays, d)
				return nil
			},
		},
	}), &delays
}

func article(id int) model.Article {
	return model.Article{
		ID:       id,
		Title:    "Cabinet reshuffle announced",
		FullText: "The Prime Minister announced a cabinet reshuffle on Sunday, inducting seven new ministers.",
	}
}

func TestAnalyzeOne_Success(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{
		{content: "```json\n{\"gist\": \"Seven ministers join the cabinet.\", \"sentiment\": \"neutral\", \"tone\": \"informative\"}\n```"},
	}}
	svc, _ := newTestService(gen, &countingPacer{})

	a := svc.AnalyzeOne(context.Background(), article(3))
	assert.True(t, a.Success)
	assert.Equal(t, 3, a.ArticleID)
	assert.Equal(t, "Seven ministers join the cabinet.", a.Gist)
	assert.Equal(t, "gemini-2.5-flash", a.Model)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.Contains(t, p, "Article Title: Cabinet reshuffle announced")
	assert.Contains(t, p, "positive OR negative OR neutral")
	assert.Contains(t, p, "urgent, analytical, satirical, balanced, critical, celebratory, alarming, informative")
}

func TestAnalyzeOne_RetriesTransientFailures(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{
		{err: &llm.StatusError{Code: 429}},
		{err: llm.ErrEmptyResponse},
		{content: `{"gist": "g", "sentiment": "negative", "tone": "critical"}`},
	}}
	svc, delays := newTestService(gen, &countingPacer{})

	a := svc.AnalyzeOne(context.Background(), article(1))
	assert.True(t, a.Success)
	assert.Equal(t, model.ToneCritical, a.Tone)
	assert.Len(t, gen.prompts, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestAnalyzeOne_FatalFailureDegrades(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{err: &llm.StatusError{Code: 401, Body: "API key not valid"}}}}
	svc, delays := newTestService(gen, &countingPacer{})

	a := svc.AnalyzeOne(context.Background(), article(2))
	assert.False(t, a.Success)
	assert.Equal(t, model.AnalysisFailedGist, a.Gist)
	assert.Equal(t, model.SentimentNeutral, a.Sentiment)
	assert.Equal(t, model.ToneInformative, a.Tone)
	assert.Contains(t, a.Error, "401")
	assert.Len(t, gen.prompts, 1)
	assert.Empty(t, *delays)
}

func TestAnalyzeOne_UndecodableReply(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{content: "I think this article is positive."}}}
	svc, _ := newTestService(gen, &countingPacer{})

	a := svc.AnalyzeOne(context.Background(), article(5))
	assert.False(t, a.Success)
	assert.Equal(t, model.AnalysisFailedGist, a.Gist)
	assert.Len(t, gen.prompts, 1)
}

func TestAnalyzeOne_TruncatesContent(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{content: `{"gist": "g", "sentiment": "neutral", "tone": "balanced"}`}}}
	svc, _ := newTestService(gen, &countingPacer{})
	svc.cfg.ContentLimit = 10

	art := article(1)
	art.FullText = strings.Repeat("z", 50)
	svc.AnalyzeOne(context.Background(), art)
	assert.Contains(t, gen.prompts[0], "Article Text: zzzzzzzzzz\n")
}

func TestAnalyzeBatch_OrderAndPacing(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{
		{content: `{"gist": "one", "sentiment": "positive", "tone": "celebratory"}`},
		{content: `not json`},
		{content: `{"gist": "three", "sentiment": "negative", "tone": "alarming"}`},
	}}
	pacer := &countingPacer{}
	svc, _ := newTestService(gen, pacer)

	got := slices.Collect(svc.AnalyzeBatch(context.Background(), []model.Article{article(1), article(2), article(3)}))
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].ArticleID, got[1].ArticleID, got[2].ArticleID})
	assert.Equal(t, "one", got[0].Gist)
	assert.False(t, got[1].Success)
	assert.Equal(t, "three", got[2].Gist)
	assert.Equal(t, 3, pacer.waits)
}

func TestAnalyzeBatch_Lazy(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{
		{content: `{"gist": "one", "sentiment": "positive", "tone": "celebratory"}`},
	}}
	svc, _ := newTestService(gen, &countingPacer{})

	for a := range svc.AnalyzeBatch(context.Background(), []model.Article{article(1), article(2)}) {
		assert.Equal(t, 1, a.ArticleID)
		break
	}
	assert.Len(t, gen.prompts, 1)
}

func TestAnalyzeBatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{}
	svc, _ := newTestService(gen, &countingPacer{})

	got := slices.Collect(svc.AnalyzeBatch(ctx, []model.Article{article(1)}))
	assert.Empty(t, got)
	assert.Empty(t, gen.prompts)
}
