package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/model"
)

type output struct {
	path string
	data []byte
}

// Writer 将一次运行的结果写入输出目录
type Writer struct {
	dir  string
	html bool
}

// NewWriter html 为 true 时额外生成 index.html
func NewWriter(dir string, html bool) *Writer {
	return &Writer{dir: dir, html: html}
}

// Dir 输出目录
func (w *Writer) Dir() string { return w.dir }

// Write 先渲染全部内容，再逐个以临时文件加重命名的方式落盘
func (w *Writer) Write(b Bundle) (Files, error) {
	raw, err := encodeJSON(b.Articles)
	if err != nil {
		return Files{}, fmt.Errorf("encode %s: %w", RawArticlesFile, err)
	}
	results, err := encodeJSON(b)
	if err != nil {
		return Files{}, fmt.Errorf("encode %s: %w", ResultsFile, err)
	}
	md, err := RenderMarkdown(b)
	if err != nil {
		return Files{}, fmt.Errorf("render %s: %w", MarkdownFile, err)
	}
	var htmlPage []byte
	if w.html {
		if htmlPage, err = RenderHTML(b); err != nil {
			return Files{}, fmt.Errorf("render %s: %w", HTMLFile, err)
		}
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("create output dir: %w", err)
	}

	files := Files{
		RawArticles: filepath.Join(w.dir, RawArticlesFile),
		Results:     filepath.Join(w.dir, ResultsFile),
		Markdown:    filepath.Join(w.dir, MarkdownFile),
	}
	outputs := []output{
		{files.RawArticles, raw},
		{files.Results, results},
		{files.Markdown, md},
	}
	if w.html {
		files.HTML = filepath.Join(w.dir, HTMLFile)
		outputs = append(outputs, output{files.HTML, htmlPage})
	}

	for _, o := range outputs {
		if err := writeAtomic(o.path, o.data); err != nil {
			return Files{}, err
		}
		logger.Log.Infof("已保存: %s", o.path)
	}
	return files, nil
}

// LoadResults 读取 analysis_results.json
func LoadResults(path string) (Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read results: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("parse results %s: %w", path, err)
	}
	b.Articles = make([]model.Article, 0, len(b.Records))
	for _, r := range b.Records {
		b.Articles = append(b.Articles, r.Article)
	}
	return b, nil
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
