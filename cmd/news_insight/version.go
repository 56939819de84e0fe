package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "news_insight %s\n", version)
	},
}
