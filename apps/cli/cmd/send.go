package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/packages/core/runner"
	"github.com/satchelhq/satchel/packages/core/store"
)

var (
	sendHeadersFlag  []string
	sendDataFlag     string
	sendDataFileFlag string
	sendEnvFlag      string
	sendTimeoutFlag  int
	sendSaveFlag     string
	sendExtractFlag  string
	sendSchemaFlag   string
	sendOutputFlag   string
)

var sendCmd = &cobra.Command{
	Use:   "send <method> <url>",
	Short: "Send an ad-hoc HTTP request",
	Long: `Send a single HTTP request without saving it first.

The URL, headers and body may carry {{variable}} placeholders resolved
from the selected environment, OS variables ({{$HOME}}) and builtin
functions ({{uuid()}}). Unresolved placeholders are sent verbatim and
reported on stderr.

Examples:
  satchel send GET https://api.example.com/users
  satchel send POST '{{baseUrl}}/users' -e staging -d '{"name":"{{userName}}"}'
  satchel send GET '{{baseUrl}}/users/42' -e staging --extract name
  satchel send POST https://api.example.com/orders --data-file order.json --save create-order`,
	Args: cobra.ExactArgs(2),
	RunE: sendCommand,
}

func init() {
	sendCmd.Flags().StringArrayVarP(&sendHeadersFlag, "header", "H", nil, "Request header as 'Key: Value' (repeatable)")
	sendCmd.Flags().StringVarP(&sendDataFlag, "data", "d", "", "Request body")
	sendCmd.Flags().StringVar(&sendDataFileFlag, "data-file", "", "Read the request body from a file")
	sendCmd.Flags().StringVarP(&sendEnvFlag, "env", "e", getEnvString("SATCHEL_ENV", ""), "Environment to resolve placeholders with (env: SATCHEL_ENV)")
	sendCmd.Flags().IntVarP(&sendTimeoutFlag, "timeout", "t", getEnvInt("SATCHEL_TIMEOUT", 0), "Request timeout in milliseconds (env: SATCHEL_TIMEOUT)")
	sendCmd.Flags().StringVar(&sendSaveFlag, "save", "", "Also save the request template under this name")
	sendCmd.Flags().StringVar(&sendExtractFlag, "extract", "", "Print only this gjson path from the response body")
	sendCmd.Flags().StringVar(&sendSchemaFlag, "check-schema", "", "Validate the response body against a JSON Schema file")
	sendCmd.Flags().StringVarP(&sendOutputFlag, "output", "o", "console", "Output format: console, json")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	method, err := store.ValidateMethod(args[0])
	if err != nil {
		return err
	}

	headers, err := parseHeaderFlags(sendHeadersFlag)
	if err != nil {
		return err
	}

	body, err := resolveBodyFlags(sendDataFlag, sendDataFileFlag)
	if err != nil {
		return err
	}
	if err := validateJSONBody(body); err != nil {
		return err
	}

	timeout, err := timeoutFromFlag(cmd, sendTimeoutFlag)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(sendOutputFlag)
	if err != nil {
		return err
	}

	st, err := store.Open()
	if err != nil {
		return err
	}

	tmpl := store.RequestTemplate{
		Name:    sendSaveFlag,
		Method:  method,
		URL:     args[1],
		Headers: headers,
		Body:    body,
	}

	// The template is persisted raw, before interpolation, so replays
	// resolve against whatever environment they run with.
	if sendSaveFlag != "" {
		if err := st.SaveRequest(tmpl); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved request %q\n", sendSaveFlag)
	}

	r, err := newRunner(st)
	if err != nil {
		return err
	}

	res, err := r.Execute(tmpl, runner.ExecOptions{Environment: sendEnvFlag, Timeout: timeout})
	if err != nil {
		return err
	}

	return renderExecution(res, formatter, sendExtractFlag, sendSchemaFlag)
}
