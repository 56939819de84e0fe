package report

import (
	"bytes"
	"html/template"
)

const htmlTpl = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>News Insight · {{ .Query }}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; line-height: 1.6; color: #333; }
        .article { border-bottom: 1px solid #eee; padding-bottom: 20px; margin-bottom: 20px; }
        .title { font-size: 1.2em; font-weight: bold; color: #2c3e50; text-decoration: none; }
        .meta { font-size: 0.9em; color: #7f8c8d; margin-bottom: 10px; }
        .summary { background-color: #f9f9f9; padding: 15px; border-radius: 5px; border-left: 4px solid #3498db; }
        .validation { margin-top: 10px; font-size: 0.95em; }
        .tag { display: inline-block; padding: 2px 8px; border-radius: 12px; font-size: 0.8em; margin-right: 5px; color: white; }
        .tag-positive { background-color: #27ae60; }
        .tag-negative { background-color: #e74c3c; }
        .tag-neutral { background-color: #95a5a6; }
        .tag-tone { background-color: #3498db; }
        .stats { display: flex; gap: 20px; justify-content: center; color: #666; }
        h1 { text-align: center; color: #2c3e50; }
    </style>
</head>
<body>
    <h1>📰 News Insight</h1>
    <p style="text-align:center; color:#666;">{{ .GeneratedAt | longDate }} • {{ .Query }} • 共 {{ len .Records }} 篇文章</p>
    <div class="stats">
        {{- range .Sentiments }}
        <span>{{ capitalize .Name }}: {{ .Count }}</span>
        {{- end }}
        <span>Valid: {{ .Statistics.Valid }} / {{ len .Records }}</span>
    </div>

    {{ range .Records }}
    <div class="article">
        <a href="{{ .Article.URL }}" class="title" target="_blank">{{ .Article.Title }}</a>
        <div class="meta">
            <span class="tag tag-{{ .Analysis.Sentiment }}">{{ capitalize .Analysis.Sentiment }}</span>
            <span class="tag tag-tone">{{ capitalize .Analysis.Tone }}</span>
            来源: {{ .Article.Source }} | 作者: {{ .Article.Author }} | 时间: {{ .Article.PublishedAt | published }}
        </div>
        <div class="summary">{{ .Analysis.Gist }}</div>
        <div class="validation">
            <strong>{{ .Validation.Result }}</strong> {{ .Validation.Reasoning }}
            {{- range corrections .Validation.Corrections }}
            <div>{{ capitalize .Field }}: {{ .Value }}</div>
            {{- end }}
        </div>
    </div>
    {{ end }}
</body>
</html>`

var page = template.Must(template.New("report").Funcs(funcs).Parse(htmlTpl))

// RenderHTML 渲染 index.html
func RenderHTML(b Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, newView(b)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
