package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVocabulary_Normalize(t *testing.T) {
	v := DefaultVocabulary()

	s, ok := v.NormalizeSentiment("  Positive ")
	assert.True(t, ok)
	assert.Equal(t, SentimentPositive, s)

	s, ok = v.NormalizeSentiment("very positive")
	assert.False(t, ok)
	assert.Equal(t, SentimentNeutral, s)

	tone, ok := v.NormalizeTone("ALARMING")
	assert.True(t, ok)
	assert.Equal(t, ToneAlarming, tone)

	tone, ok = v.NormalizeTone("sarcastic")
	assert.False(t, ok)
	assert.Equal(t, ToneInformative, tone)
}

func TestVocabulary_Lists(t *testing.T) {
	v := DefaultVocabulary()
	assert.Equal(t, "positive, negative, neutral", v.SentimentList(", "))
	assert.Len(t, v.Tones, 8)
	assert.Contains(t, v.ToneList(", "), "celebratory")
}

func TestComputeStatistics(t *testing.T) {
	v := DefaultVocabulary()
	records := []CombinedRecord{
		{Analysis: Analysis{Sentiment: SentimentPositive, Tone: ToneCritical, Success: true}, Validation: Validation{IsValid: true}},
		{Analysis: Analysis{Sentiment: SentimentNegative, Tone: ToneCritical, Success: true}, Validation: Validation{IsValid: false}},
		{Analysis: Analysis{Sentiment: SentimentNeutral, Tone: ToneInformative, Success: false}, Validation: Validation{IsValid: true}},
	}

	stats := ComputeStatistics(records, v, 1500*time.Millisecond)

	assert.Equal(t, 3, stats.TotalArticles)
	assert.Equal(t, 1, stats.SentimentCounts[SentimentPositive])
	assert.Equal(t, 1, stats.SentimentCounts[SentimentNegative])
	assert.Equal(t, 1, stats.SentimentCounts[SentimentNeutral])
	assert.Equal(t, 2, stats.ToneCounts[ToneCritical])
	assert.Equal(t, 0, stats.ToneCounts[ToneUrgent])
	assert.Equal(t, 2, stats.Valid)
	assert.Equal(t, 1, stats.Invalid)
	assert.Equal(t, 1, stats.FailedAnalyses)
	assert.InDelta(t, 1.5, stats.DurationSeconds, 1e-9)

	ranked := stats.RankedTones(v)
	assert.Equal(t, []ToneCount{{ToneCritical, 2}, {ToneInformative, 1}}, ranked)
}

func TestCombinedRecord_Consistent(t *testing.T) {
	r := CombinedRecord{
		Article:    Article{ID: 2},
		Analysis:   Analysis{ArticleID: 2},
		Validation: Validation{ArticleID: 2},
	}
	assert.True(t, r.Consistent())

	r.Validation.ArticleID = 3
	assert.False(t, r.Consistent())
}
