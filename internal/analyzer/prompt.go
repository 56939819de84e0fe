package analyzer

import (
	"fmt"

	"github.com/iWorld-y/news_insight/internal/model"
)

const promptTemplate = `You are a news analysis expert. Analyze the following news article and provide a structured response.

Article Title: %s

Article Text: %s

Provide your analysis in the following JSON format:
{
    "gist": "A concise 1-2 sentence summary of the main news",
    "sentiment": "%s",
    "tone": "Choose ONE from: %s"
}

Rules:
1. Gist must be factual and concise (1-2 sentences max)
2. Sentiment must be exactly one of: %s
3. Tone must be exactly one of the options provided
4. Return ONLY valid JSON, no additional text

JSON Response:`

// BuildPrompt 构造分析 Prompt，text 已按 ContentLimit 截断
func BuildPrompt(title, text string, vocab model.Vocabulary) string {
	return fmt.Sprintf(promptTemplate,
		title,
		text,
		vocab.SentimentList(" OR "),
		vocab.ToneList(", "),
		vocab.SentimentList(", "),
	)
}
