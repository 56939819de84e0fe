package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/model"
	"github.com/iWorld-y/news_insight/internal/report"
	"github.com/iWorld-y/news_insight/internal/source"
)

var (
	// ErrNoArticles 过滤后没有可用文章
	ErrNoArticles = errors.New("no articles fetched")
	// ErrCountMismatch 阶段产出数量与输入不一致
	ErrCountMismatch = errors.New("stage output count does not match input")
	// ErrIDMismatch 阶段产出与输入的文章 ID 不一致
	ErrIDMismatch = errors.New("stage output article id does not match input")
)

// ArticleSource 文章来源
type ArticleSource interface {
	Fetch(ctx context.Context, q source.Query) ([]model.Article, error)
}

// Analyzer 批量分析
type Analyzer interface {
	AnalyzeBatch(ctx context.Context, articles []model.Article) iter.Seq[model.Analysis]
}

// Validator 批量校验
type Validator interface {
	ValidateBatch(ctx context.Context, pairs []model.Pair) iter.Seq[model.Validation]
}

// OutputWriter 结果落盘
type OutputWriter interface {
	Write(b report.Bundle) (report.Files, error)
}

// RecordStore 可选的数据库归档
type RecordStore interface {
	SaveRun(ctx context.Context, stats model.RunStatistics, startedAt time.Time, records []model.CombinedRecord) error
}

// Options 单次运行参数
type Options struct {
	Query            source.Query
	ProgressCallback func(State)
}

// Result 运行结果
type Result struct {
	RunID   string
	State   State
	Stats   model.RunStatistics
	Files   report.Files
	Records []model.CombinedRecord
}

// Pipeline 只负责阶段编排与汇总
type Pipeline struct {
	source     ArticleSource
	analyzer   Analyzer
	validator  Validator
	writer     OutputWriter
	store      RecordStore
	vocab      model.Vocabulary
	sourceName string

	now   func() time.Time
	newID func() string
}

// New store 可以为 nil
func New(src ArticleSource, analyzer Analyzer, validator Validator, writer OutputWriter, store RecordStore, vocab model.Vocabulary, sourceName string) *Pipeline {
	return &Pipeline{
		source:     src,
		analyzer:   analyzer,
		validator:  validator,
		writer:     writer,
		store:      store,
		vocab:      vocab,
		sourceName: sourceName,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

type run struct {
	p        *Pipeline
	opts     Options
	state    State
	runID    string
	started  time.Time
	articles []model.Article
	analyses []model.Analysis
	valids   []model.Validation
	records  []model.CombinedRecord
}

// Run 顺序执行 Fetching → Analyzing → Validating → Combining → Reporting
// 任一阶段失败进入 Failed 并返回 *StageError
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	r := &run{p: p, opts: opts, runID: p.newID(), started: p.now(), state: StateFetching}
	logger.Log.WithField("run_id", r.runID).Infof("开始运行: query=%q max=%d", opts.Query.Text, opts.Query.MaxArticles)
	r.notify()

	steps := []struct {
		state State
		fn    func(ctx context.Context) error
	}{
		{StateFetching, r.fetch},
		{StateAnalyzing, r.analyze},
		{StateValidating, r.validate},
		{StateCombining, r.combine},
	}
	for _, step := range steps {
		if step.state != r.state {
			r.transition(step.state)
		}
		if err := step.fn(ctx); err != nil {
			return r.fail(err)
		}
	}

	r.transition(StateReporting)
	res, err := r.report(ctx)
	if err != nil {
		return r.fail(err)
	}
	r.transition(StateDone)
	res.State = StateDone
	return res, nil
}

func (r *run) fetch(ctx context.Context) error {
	articles, err := r.p.source.Fetch(ctx, r.opts.Query)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return ErrNoArticles
	}
	logger.Log.Infof("获取到 %d 篇文章", len(articles))
	r.articles = articles
	return nil
}

func (r *run) analyze(ctx context.Context) error {
	analyses := make([]model.Analysis, 0, len(r.articles))
	for a := range r.p.analyzer.AnalyzeBatch(ctx, r.articles) {
		analyses = append(analyses, a)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(analyses) != len(r.articles) {
		return fmt.Errorf("%w: %d analyses for %d articles", ErrCountMismatch, len(analyses), len(r.articles))
	}
	for i, a := range analyses {
		if a.ArticleID != r.articles[i].ID {
			return fmt.Errorf("%w: analysis %d has article id %d, want %d", ErrIDMismatch, i, a.ArticleID, r.articles[i].ID)
		}
	}
	logger.Log.Infof("完成 %d 篇文章的分析", len(analyses))
	r.analyses = analyses
	return nil
}

func (r *run) validate(ctx context.Context) error {
	pairs := make([]model.Pair, len(r.articles))
	for i := range r.articles {
		pairs[i] = model.Pair{Article: r.articles[i], Analysis: r.analyses[i]}
	}

	valids := make([]model.Validation, 0, len(pairs))
	for v := range r.p.validator.ValidateBatch(ctx, pairs) {
		valids = append(valids, v)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(valids) != len(pairs) {
		return fmt.Errorf("%w: %d validations for %d analyses", ErrCountMismatch, len(valids), len(pairs))
	}
	logger.Log.Infof("完成 %d 条分析的校验", len(valids))
	r.valids = valids
	return nil
}

func (r *run) combine(context.Context) error {
	records := make([]model.CombinedRecord, len(r.articles))
	for i := range r.articles {
		rec := model.CombinedRecord{Article: r.articles[i], Analysis: r.analyses[i], Validation: r.valids[i]}
		if !rec.Consistent() {
			return fmt.Errorf("%w: record %d (article %d, analysis %d, validation %d)", ErrIDMismatch,
				i, rec.Article.ID, rec.Analysis.ArticleID, rec.Validation.ArticleID)
		}
		records[i] = rec
	}
	r.records = records
	return nil
}

func (r *run) report(ctx context.Context) (*Result, error) {
	stats := model.ComputeStatistics(r.records, r.p.vocab, r.p.now().Sub(r.started))
	stats.RunID = r.runID
	stats.Query = r.opts.Query.Text

	files, err := r.p.writer.Write(report.Bundle{
		RunID:       r.runID,
		Query:       r.opts.Query.Text,
		Source:      r.p.sourceName,
		GeneratedAt: r.p.now(),
		Vocabulary:  r.p.vocab,
		Statistics:  stats,
		Records:     r.records,
		Articles:    r.articles,
	})
	if err != nil {
		return nil, err
	}

	if r.p.store != nil {
		if err := r.p.store.SaveRun(ctx, stats, r.started, r.records); err != nil {
			logger.Log.WithField("run_id", r.runID).Errorf("保存运行记录失败: %v", err)
		}
	}

	return &Result{RunID: r.runID, Stats: stats, Files: files, Records: r.records}, nil
}

func (r *run) transition(next State) {
	logger.Log.WithField("run_id", r.runID).Infof("状态变更: %s -> %s", r.state, next)
	r.state = next
	r.notify()
}

func (r *run) fail(err error) (*Result, error) {
	failed := r.state
	logger.Log.WithFields(logrus.Fields{"run_id": r.runID, "stage": failed.String()}).Errorf("流水线失败: %v", err)
	r.transition(StateFailed)
	return &Result{RunID: r.runID, State: StateFailed}, &StageError{State: failed, Err: err}
}

func (r *run) notify() {
	if r.opts.ProgressCallback != nil {
		r.opts.ProgressCallback(r.state)
	}
}
