package report

import (
	"time"

	"github.com/iWorld-y/news_insight/internal/model"
)

// 输出文件名
const (
	RawArticlesFile = "raw_articles.json"
	ResultsFile     = "analysis_results.json"
	MarkdownFile    = "final_report.md"
	HTMLFile        = "index.html"
)

// Bundle 一次运行的全部产出，写文件前必须已经完整
type Bundle struct {
	RunID       string                 `json:"run_id"`
	Query       string                 `json:"query"`
	Source      string                 `json:"source"`
	GeneratedAt time.Time              `json:"generated_at"`
	Vocabulary  model.Vocabulary       `json:"vocabulary"`
	Statistics  model.RunStatistics    `json:"statistics"`
	Records     []model.CombinedRecord `json:"results"`
	// Articles 过滤后的原始文章，不写入结果文件
	Articles []model.Article `json:"-"`
}

// Files 已写入的文件路径
type Files struct {
	RawArticles string `json:"raw_articles"`
	Results     string `json:"results"`
	Markdown    string `json:"markdown"`
	HTML        string `json:"html,omitempty"`
}
