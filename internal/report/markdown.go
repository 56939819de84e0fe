package report

import (
	"bytes"
	"strings"
	"text/template"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/iWorld-y/news_insight/internal/model"
)

const markdownTpl = `# News Analysis Report

**Date:** {{ .GeneratedAt | longDate }}  
**Query:** {{ .Query }}  
**Articles Analyzed:** {{ len .Records }}  
**Source:** {{ .Source }}

---

## Summary

### Sentiment Distribution
{{- range .Sentiments }}
- **{{ capitalize .Name }}:** {{ .Count }} articles
{{- end }}

### Tone Distribution
{{- range .Tones }}
- **{{ capitalize .Tone }}:** {{ .Count }} articles
{{- end }}

### Validation Results
- **Valid Analyses:** {{ .Statistics.Valid }} / {{ len .Records }}
- **Issues Found:** {{ .Statistics.Invalid }} / {{ len .Records }}

---

## Detailed Analysis

{{ range $i, $r := .Records -}}
### Article {{ inc $i }}: {{ $r.Article.Title }}

**Source:** [{{ $r.Article.Source }}]({{ $r.Article.URL }})  
**Published:** {{ $r.Article.PublishedAt | published }}  
**Author:** {{ $r.Article.Author }}

#### Analysis (LLM#1: {{ $r.Analysis.Model }})
- **Gist:** {{ $r.Analysis.Gist }}
- **Sentiment:** {{ capitalize $r.Analysis.Sentiment }}
- **Tone:** {{ capitalize $r.Analysis.Tone }}

#### Validation (LLM#2: {{ $r.Validation.Model }})
- **Result:** {{ $r.Validation.Result }}
- **Reasoning:** {{ $r.Validation.Reasoning }}
{{- with corrections $r.Validation.Corrections }}

**Suggested Corrections:**
{{- range . }}
- {{ capitalize .Field }}: {{ .Value }}
{{- end }}
{{- end }}

---

{{ end -}}
`

type sentimentCount struct {
	Name  model.Sentiment
	Count int
}

type correction struct {
	Field string
	Value string
}

type reportView struct {
	Bundle
	Sentiments []sentimentCount
	Tones      []model.ToneCount
}

func newView(b Bundle) reportView {
	v := reportView{Bundle: b, Tones: b.Statistics.RankedTones(b.Vocabulary)}
	for _, s := range b.Vocabulary.Sentiments {
		v.Sentiments = append(v.Sentiments, sentimentCount{Name: s, Count: b.Statistics.SentimentCounts[s]})
	}
	return v
}

var funcs = map[string]any{
	"capitalize":  capitalize,
	"inc":         func(i int) int { return i + 1 },
	"longDate":    func(t time.Time) string { return t.Format("January 02, 2006 at 03:04 PM MST") },
	"published":   formatPublished,
	"corrections": sortedCorrections,
}

var markdown = template.Must(template.New("markdown").Funcs(funcs).Parse(markdownTpl))

// RenderMarkdown 渲染 final_report.md
func RenderMarkdown(b Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Execute(&buf, newView(b)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// capitalize 首字母大写，参数可以是 Sentiment / Tone 等字符串类型
func capitalize(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case model.Sentiment:
		s = string(x)
	case model.Tone:
		s = string(x)
	default:
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func formatPublished(t time.Time) string {
	if t.IsZero() {
		return model.UnknownSentinel
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

func sortedCorrections(m map[string]string) []correction {
	var out []correction
	for _, f := range []string{model.FieldGist, model.FieldSentiment, model.FieldTone} {
		if v := m[f]; v != "" {
			out = append(out, correction{Field: f, Value: v})
		}
	}
	return out
}
