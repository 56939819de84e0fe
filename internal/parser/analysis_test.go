package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_insight/internal/model"
)

const testModel = "gemini-2.5-flash"

func TestParseAnalysis_Valid(t *testing.T) {
	vocab := model.DefaultVocabulary()
	res := ParseAnalysis(`{"gist": "  Parliament passed the bill. ", "sentiment": "Positive", "tone": "analytical"}`, 4, testModel, vocab)

	require.True(t, res.Decoded)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Coercions)
	assert.Equal(t, model.Analysis{
		ArticleID: 4,
		Gist:      "Parliament passed the bill.",
		Sentiment: model.SentimentPositive,
		Tone:      model.ToneAnalytical,
		Model:     testModel,
		Success:   true,
	}, res.Analysis)
}

func TestParseAnalysis_OutOfEnumCoerced(t *testing.T) {
	vocab := model.DefaultVocabulary()
	res := ParseAnalysis(`{"gist": "g", "sentiment": "very positive", "tone": "sarcastic"}`, 1, testModel, vocab)

	require.True(t, res.Decoded)
	assert.True(t, res.Analysis.Success)
	assert.Equal(t, model.SentimentNeutral, res.Analysis.Sentiment)
	assert.Equal(t, model.ToneInformative, res.Analysis.Tone)
	require.Len(t, res.Coercions, 2)
	assert.Equal(t, "very positive", res.Coercions[0].Raw)
	assert.False(t, res.Coercions[0].Missing)
}

func TestParseAnalysis_MissingToneNotSuccess(t *testing.T) {
	vocab := model.DefaultVocabulary()
	res := ParseAnalysis(`{"gist": "g", "sentiment": "negative"}`, 1, testModel, vocab)

	require.True(t, res.Decoded)
	assert.False(t, res.Analysis.Success)
	assert.Equal(t, model.SentimentNegative, res.Analysis.Sentiment)
	assert.Equal(t, model.ToneInformative, res.Analysis.Tone)
	require.Len(t, res.Coercions, 1)
	assert.True(t, res.Coercions[0].Missing)
}

func TestParseAnalysis_DecodeFailure(t *testing.T) {
	vocab := model.DefaultVocabulary()
	for _, in := range []string{
		"Sure! Here is the analysis: positive",
		`{"gist": ""}`,
		`{"sentiment": "positive", "tone": "urgent"}`,
		`{"gist": 3}`,
		"",
	} {
		res := ParseAnalysis(in, 7, testModel, vocab)
		assert.False(t, res.Decoded, in)
		assert.Error(t, res.Err, in)
		assert.False(t, res.Analysis.Success, in)
		assert.Equal(t, model.AnalysisFailedGist, res.Analysis.Gist, in)
		assert.Equal(t, model.SentimentNeutral, res.Analysis.Sentiment, in)
		assert.Equal(t, model.ToneInformative, res.Analysis.Tone, in)
		assert.Equal(t, 7, res.Analysis.ArticleID, in)
	}
}

func TestParseAnalysis_AlwaysInVocabulary(t *testing.T) {
	vocab := model.DefaultVocabulary()
	for _, in := range []string{
		`{"gist": "g", "sentiment": "MIXED", "tone": "snarky"}`,
		`{"gist": "g", "sentiment": "", "tone": ""}`,
		`{"gist": "g", "sentiment": null, "tone": null}`,
		`not json`,
	} {
		res := ParseAnalysis(Sanitize(in), 1, testModel, vocab)
		assert.True(t, vocab.HasSentiment(res.Analysis.Sentiment), in)
		assert.True(t, vocab.HasTone(res.Analysis.Tone), in)
	}
}
