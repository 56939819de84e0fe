package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/news_insight/internal/logger"
	"github.com/iWorld-y/news_insight/internal/report"
)

var (
	reportInput  string
	reportOutput string
	reportPrint  bool
	reportWidth  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "根据已保存的 analysis_results.json 重新生成报告",
	Args:  cobra.NoArgs,
	RunE:  renderReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportInput, "input", "i", "", "结果文件路径 (默认 <output>/analysis_results.json)")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "输出目录 (默认与结果文件相同)")
	reportCmd.Flags().BoolVarP(&reportPrint, "print", "p", false, "在终端渲染 Markdown 报告")
	reportCmd.Flags().IntVar(&reportWidth, "width", 100, "终端渲染宽度")
}

func renderReport(cmd *cobra.Command, args []string) error {
	input := reportInput
	if input == "" {
		input = filepath.Join(cfg.Output.Dir, report.ResultsFile)
	}
	bundle, err := report.LoadResults(input)
	if err != nil {
		return err
	}
	logger.Log.Infof("已加载运行结果: run_id=%s records=%d", bundle.RunID, len(bundle.Records))

	if reportPrint {
		md, err := report.RenderMarkdown(bundle)
		if err != nil {
			return err
		}
		out, err := report.RenderTerminal(md, reportWidth)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	dir := reportOutput
	if dir == "" {
		dir = filepath.Dir(input)
	}
	files, err := report.NewWriter(dir, cfg.Output.HTML).Write(bundle)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "报告已生成: %s\n", files.Markdown)
	if files.HTML != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "报告已生成: %s\n", files.HTML)
	}
	return nil
}
