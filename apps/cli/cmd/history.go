package cmd

import (
	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/history"
)

var (
	historyLimitFlag   int
	historyEnvFlag     string
	historyRequestFlag string
	historyMethodFlag  string
	historyOutputFlag  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent executions",
	Long: `Show recent executions, newest first. Filters narrow by environment,
saved request name or method; --limit bounds how many entries print.

Examples:
  satchel history
  satchel history --limit 25
  satchel history --env staging --method POST
  satchel history --request get-user -o json`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", history.DefaultQueryLimit, "Maximum entries to show")
	historyCmd.Flags().StringVar(&historyEnvFlag, "env", "", "Only executions against this environment")
	historyCmd.Flags().StringVar(&historyRequestFlag, "request", "", "Only executions of this saved request")
	historyCmd.Flags().StringVar(&historyMethodFlag, "method", "", "Only executions with this method")
	historyCmd.Flags().StringVarP(&historyOutputFlag, "output", "o", "console", "Output format: console or json")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(historyOutputFlag)
	if err != nil {
		return err
	}

	ledger, err := history.Open()
	if err != nil {
		return err
	}

	entries, err := ledger.Entries(history.Query{
		Limit:       &historyLimitFlag,
		Environment: historyEnvFlag,
		Request:     historyRequestFlag,
		Method:      historyMethodFlag,
	})
	if err != nil {
		return err
	}

	formatter.FormatHistory(entries)
	return nil
}
