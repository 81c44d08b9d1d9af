package cmd

import (
	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/runner"
	"github.com/satchelhq/satchel/packages/core/store"
)

var (
	runEnvFlag     string
	runTimeoutFlag int
	runExtractFlag string
	runSchemaFlag  string
	runOutputFlag  string
)

var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a saved request",
	Long: `Execute a request template saved earlier with save, send --save or
import. Placeholders resolve at send time against the selected
environment, so the same template replays against dev, staging or
anything else.

Examples:
  satchel run get-user
  satchel run get-user -e staging
  satchel run create-order -t 5000 -o json
  satchel run get-user --extract user.email`,
	Args: cobra.ExactArgs(1),
	RunE: runCommand,
}

func init() {
	runCmd.Flags().StringVarP(&runEnvFlag, "env", "e", getEnvString("SATCHEL_ENV", ""), "Environment to resolve placeholders with (env: SATCHEL_ENV)")
	runCmd.Flags().IntVarP(&runTimeoutFlag, "timeout", "t", getEnvInt("SATCHEL_TIMEOUT", 0), "Request timeout in milliseconds (env: SATCHEL_TIMEOUT)")
	runCmd.Flags().StringVar(&runExtractFlag, "extract", "", "Print only this gjson path from the response body")
	runCmd.Flags().StringVar(&runSchemaFlag, "check-schema", "", "Validate the response body against a JSON Schema file")
	runCmd.Flags().StringVarP(&runOutputFlag, "output", "o", "console", "Output format: console, json")
}

func runCommand(cmd *cobra.Command, args []string) error {
	timeout, err := timeoutFromFlag(cmd, runTimeoutFlag)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(runOutputFlag)
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	r, err := newRunner(st)
	if err != nil {
		return err
	}

	res, err := r.ExecuteSaved(args[0], runner.ExecOptions{Environment: runEnvFlag, Timeout: timeout})
	if err != nil {
		return err
	}

	return renderExecution(res, formatter, runExtractFlag, runSchemaFlag)
}
