package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/news_insight/internal/storage"
)

var runsLimit uint64

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "列出数据库中保存的历史运行",
	Args:  cobra.NoArgs,
	RunE:  listRuns,
}

func init() {
	runsCmd.Flags().Uint64Var(&runsLimit, "limit", 20, "最多显示的条数")
}

func listRuns(cmd *cobra.Command, args []string) error {
	if cfg.DB.Driver == "" {
		return fmt.Errorf("未配置数据库 (db.driver)")
	}
	store, err := storage.NewStorage(cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSTARTED\tQUERY\tARTICLES\tVALID\tINVALID\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n", r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Query, r.TotalArticles, r.Valid, r.Invalid, r.FailedAnalyses)
	}
	return tw.Flush()
}
