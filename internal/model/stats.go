package model

import (
	"sort"
	"time"
)

// RunStatistics 一次运行的统计信息，在全部 CombinedRecord 生成后计算一次
type RunStatistics struct {
	RunID           string            `json:"run_id"`
	Query           string            `json:"query"`
	TotalArticles   int               `json:"total_articles"`
	SentimentCounts map[Sentiment]int `json:"sentiment_distribution"`
	ToneCounts      map[Tone]int      `json:"tone_distribution"`
	Valid           int               `json:"valid"`
	Invalid         int               `json:"invalid"`
	FailedAnalyses  int               `json:"failed_analyses"`
	DurationSeconds float64           `json:"duration_seconds"`
}

// ComputeStatistics 统计情感、语气与校验结果
func ComputeStatistics(records []CombinedRecord, vocab Vocabulary, elapsed time.Duration) RunStatistics {
	stats := RunStatistics{
		TotalArticles:   len(records),
		SentimentCounts: make(map[Sentiment]int, len(vocab.Sentiments)),
		ToneCounts:      make(map[Tone]int, len(vocab.Tones)),
		DurationSeconds: elapsed.Seconds(),
	}
	for _, s := range vocab.Sentiments {
		stats.SentimentCounts[s] = 0
	}
	for _, t := range vocab.Tones {
		stats.ToneCounts[t] = 0
	}

	for _, r := range records {
		stats.SentimentCounts[r.Analysis.Sentiment]++
		stats.ToneCounts[r.Analysis.Tone]++
		if !r.Analysis.Success {
			stats.FailedAnalyses++
		}
		if r.Validation.IsValid {
			stats.Valid++
		} else {
			stats.Invalid++
		}
	}
	return stats
}

// ToneCount 语气计数，用于排序展示
type ToneCount struct {
	Tone  Tone
	Count int
}

// RankedTones 按数量从高到低排列出现过的语气，数量相同时保持词表顺序
func (s RunStatistics) RankedTones(vocab Vocabulary) []ToneCount {
	var out []ToneCount
	seen := make(map[Tone]bool, len(vocab.Tones))
	for _, t := range vocab.Tones {
		seen[t] = true
		if c := s.ToneCounts[t]; c > 0 {
			out = append(out, ToneCount{Tone: t, Count: c})
		}
	}
	// 词表之外的语气（例如从旧结果文件加载）按名称排在后面
	var extra []ToneCount
	for t, c := range s.ToneCounts {
		if !seen[t] && c > 0 {
			extra = append(extra, ToneCount{Tone: t, Count: c})
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].Tone < extra[j].Tone })
	out = append(out, extra...)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
