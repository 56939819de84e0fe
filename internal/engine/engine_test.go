package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_insight/internal/config"
	"github.com/iWorld-y/news_insight/internal/pipeline"
	"github.com/iWorld-y/news_insight/internal/report"
	"github.com/iWorld-y/news_insight/internal/storage"
)

const newsBody = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {"source": {"id": null, "name": "The Hindu"}, "author": "Staff", "title": "Election dates announced",
     "description": "The Election Commission announced dates for the state assembly polls on Tuesday.",
     "url": "https://example.com/1", "publishedAt": "2026-01-16T08:30:00Z", "content": null},
    {"source": {"id": null, "name": "NDTV"}, "author": null, "title": "Budget session",
     "description": "The budget session of parliament will begin on 31 January with the President's address.",
     "url": "https://example.com/2", "publishedAt": "2026-01-16T09:00:00Z", "content": null}
  ]
}`

func completion(content string) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":      "gen-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return body
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	news := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(newsBody))
	}))
	t.Cleanup(news.Close)

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(body), "fact-checking expert") {
			_, _ = w.Write(completion(`{"is_valid": false, "result": "✗ Issues Found", "reasoning": "Tone is off.", "corrections": {"tone": "urgent"}}`))
			return
		}
		_, _ = w.Write(completion("```json\n{\"gist\": \"Polls announced.\", \"sentiment\": \"Neutral\", \"tone\": \"informative\"}\n```"))
	}))
	t.Cleanup(llmSrv.Close)

	cfg := config.Default()
	cfg.News.NewsAPI = config.NewsAPIConfig{APIKey: "news-key", BaseURL: news.URL}
	for _, c := range []*config.LLMConfig{&cfg.Analyzer, &cfg.Validator} {
		c.Provider = config.ProviderOpenAI
		c.APIKey = "k"
		c.BaseURL = llmSrv.URL
		c.Pacing.Interval = time.Millisecond
		c.Retry.BaseDelay = time.Millisecond
	}
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")
	cfg.DB = config.DBConfig{Driver: storage.DriverSQLite, Path: filepath.Join(t.TempDir(), "runs.db")}
	return cfg
}

func TestEngine_Run(t *testing.T) {
	cfg := testConfig(t)

	e, err := NewEngine(context.Background(), cfg)
	require.NoError(t, err)
	defer e.Close()
	require.NotNil(t, e.Store())

	var states []pipeline.State
	res, err := e.Run(context.Background(), RunOptions{
		Query:            "India elections",
		ProgressCallback: func(s pipeline.State) { states = append(states, s) },
	})
	require.NoError(t, err)

	assert.Equal(t, pipeline.StateDone, res.State)
	assert.Equal(t, pipeline.StateDone, states[len(states)-1])
	require.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.Stats.SentimentCounts["neutral"])
	assert.Equal(t, 0, res.Stats.Valid)
	assert.Equal(t, 2, res.Stats.Invalid)
	assert.Equal(t, "urgent", res.Records[0].Validation.Corrections["tone"])
	assert.Equal(t, "India elections", res.Stats.Query)

	loaded, err := report.LoadResults(filepath.Join(e.OutputDir(), report.ResultsFile))
	require.NoError(t, err)
	assert.Equal(t, res.RunID, loaded.RunID)
	assert.Equal(t, "newsapi", loaded.Source)

	runs, err := e.Store().ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	n, err := e.Store().CountRecords(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestEngine_DatabaseFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB = config.DBConfig{Driver: "mysql"}

	e, err := NewEngine(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, e.Store())
	assert.NoError(t, e.Close())
}

func TestEngine_MissingKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Validator.APIKey = ""

	_, err := NewEngine(context.Background(), cfg)
	assert.ErrorContains(t, err, "校验模型")
}
