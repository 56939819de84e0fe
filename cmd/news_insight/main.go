package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/news_insight/internal/config"
	"github.com/iWorld-y/news_insight/internal/logger"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "news_insight",
	Short: "新闻洞察：抓取新闻，双模型分析与校验，生成报告",
	Long: `news_insight 从新闻接口抓取文章，使用第一个模型生成摘要、情感与语气，
再由第二个模型校验分析结果，最后输出 JSON、Markdown 与 HTML 报告。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("无法加载配置文件: %w", err)
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		if err := logger.InitLogger(c.Log.Level, c.Log.File); err != nil {
			return fmt.Errorf("无法初始化日志: %w", err)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (默认 $NEWS_INSIGHT_CONFIG 或 configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 debug/info/warn/error")

	rootCmd.AddCommand(runCmd, reportCmd, runsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
