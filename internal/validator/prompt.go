package validator

import (
	"fmt"

	"github.com/iWorld-y/news_insight/internal/model"
)

const promptTemplate = `You are a fact-checking expert. Your job is to validate whether an AI's analysis of a news article is accurate.

**Original Article:**
Title: %s
Content: %s

**AI Analysis to Validate:**
- Gist: %s
- Sentiment: %s
- Tone: %s

**Your Task:**
Carefully compare the analysis with the article content and answer:

1. Is the gist accurate? (Does it correctly summarize the main point?)
2. Is the sentiment correct? (%s)
3. Is the tone appropriate? (%s)

Respond in JSON format:
{
    "is_valid": true or false,
    "result": "%s" or "%s",
    "reasoning": "Brief explanation of your validation",
    "corrections": {
        "gist": "corrected gist if needed, otherwise null",
        "sentiment": "corrected sentiment if needed, otherwise null",
        "tone": "corrected tone if needed, otherwise null"
    }
}

Return ONLY valid JSON, no additional text.`

// BuildPrompt 构造校验 Prompt，content 已按 ContentLimit 截断
func BuildPrompt(title, content string, a model.Analysis, vocab model.Vocabulary) string {
	return fmt.Sprintf(promptTemplate,
		orNA(title),
		orNA(content),
		orNA(a.Gist),
		orNA(string(a.Sentiment)),
		orNA(string(a.Tone)),
		vocab.SentimentList("/"),
		vocab.ToneList("/"),
		model.ResultCorrect,
		model.ResultIssues,
	)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
