package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/news_insight/internal/engine"
	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/model"
	"github.com/iWorld-y/news_insight/internal/pipeline"
)

var (
	runQuery       string
	runMaxArticles int
	runLanguage    string
	runOutput      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "执行一次完整的抓取、分析、校验与报告流程",
	Args:  cobra.NoArgs,
	RunE:  runPipeline,
}

func init() {
	runCmd.Flags().StringVarP(&runQuery, "query", "q", "", "搜索关键词 (默认使用配置)")
	runCmd.Flags().IntVarP(&runMaxArticles, "max-articles", "n", 0, "最多处理的文章数")
	runCmd.Flags().StringVar(&runLanguage, "language", "", "文章语言")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "输出目录")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if runOutput != "" {
		cfg.Output.Dir = runOutput
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := engine.NewEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Log.Warnf("关闭数据库连接失败: %v", err)
		}
	}()

	out := cmd.OutOrStdout()
	res, err := e.Run(ctx, engine.RunOptions{
		Query:       runQuery,
		Language:    runLanguage,
		MaxArticles: runMaxArticles,
		ProgressCallback: func(s pipeline.State) {
			fmt.Fprintf(cmd.ErrOrStderr(), "▶ %s\n", s)
		},
	})
	if err != nil {
		return fmt.Errorf("运行失败: %w", err)
	}

	printSummary(out, res, cfg.Vocabulary)
	return nil
}

func printSummary(w io.Writer, res *pipeline.Result, vocab model.Vocabulary) {
	s := res.Stats
	fmt.Fprintf(w, "\n运行完成: %s\n", res.RunID)
	fmt.Fprintf(w, "  文章总数: %d\n", s.TotalArticles)
	fmt.Fprintf(w, "  耗时: %s\n", time.Duration(s.DurationSeconds*float64(time.Second)).Round(time.Millisecond))

	fmt.Fprintln(w, "  情感分布:")
	for _, sent := range vocab.Sentiments {
		fmt.Fprintf(w, "    %-12s %d\n", sent, s.SentimentCounts[sent])
	}
	fmt.Fprintln(w, "  语气排行:")
	for _, tc := range s.RankedTones(vocab) {
		fmt.Fprintf(w, "    %-12s %d\n", tc.Tone, tc.Count)
	}
	fmt.Fprintf(w, "  校验通过: %d  存在问题: %d  分析失败: %d\n", s.Valid, s.Invalid, s.FailedAnalyses)

	fmt.Fprintln(w, "  输出文件:")
	for _, f := range []string{res.Files.RawArticles, res.Files.Results, res.Files.Markdown, res.Files.HTML} {
		if f != "" {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}
}
