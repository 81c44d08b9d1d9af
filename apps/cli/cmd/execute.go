package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/history"
	"github.com/satchelhq/satchel/packages/core/runner"
	"github.com/satchelhq/satchel/packages/core/store"
	"github.com/satchelhq/satchel/packages/http"
	"github.com/satchelhq/satchel/packages/output"
	"github.com/satchelhq/satchel/packages/schema"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.Result)
	FormatHistory(entries []history.Entry)
	FormatError(err error)
	FormatHeader(version string)
}

func newFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "json":
		return output.NewJSONFormatter(), nil
	case "", "console":
		return output.NewConsoleFormatter(
			output.WithVerbose(verboseFlag),
			output.WithNoColor(noColorFlag),
		), nil
	default:
		return nil, fault.Validationf("cli.output", "unknown output format %q, want console or json", format)
	}
}

func newRunner(st *store.Store) (*runner.Runner, error) {
	ledger, err := history.Open()
	if err != nil {
		return nil, err
	}
	dispatcher := http.NewDispatcher(http.NewClient())
	return runner.New(st, ledger, dispatcher), nil
}

// resolveBodyFlags picks the request body from --data or --data-file.
func resolveBodyFlags(data, dataFile string) (string, error) {
	if data != "" && dataFile != "" {
		return "", fault.Validationf("cli.body", "use either --data or --data-file, not both")
	}
	if dataFile == "" {
		return data, nil
	}
	raw, err := os.ReadFile(dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fault.Configurationf("cli.body", nil, "no body file at %s", dataFile)
		}
		return "", fault.Storagef("cli.body", err, "cannot read %s", dataFile)
	}
	return string(raw), nil
}

// timeoutFromFlag converts a millisecond flag into a duration. An
// explicit zero is rejected; unset means the dispatcher default.
func timeoutFromFlag(cmd *cobra.Command, ms int) (time.Duration, error) {
	if cmd.Flags().Changed("timeout") && ms == 0 {
		return 0, fault.Validationf("cli.timeout", "timeout must be positive, got 0 ms")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// parseHeaderFlags validates repeated -H values. Each one must look
// like "Key: Value".
func parseHeaderFlags(headers []string) ([]string, error) {
	for _, h := range headers {
		key, _, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fault.Validationf("cli.header", "malformed header %q, want 'Key: Value'", h)
		}
	}
	return headers, nil
}

// ensureContentType appends a Content-Type header unless one is
// already set. Header names compare case-insensitively.
func ensureContentType(headers []string, contentType string) []string {
	for _, h := range headers {
		key, _, _ := strings.Cut(h, ":")
		if strings.EqualFold(strings.TrimSpace(key), "Content-Type") {
			return headers
		}
	}
	return append(headers, "Content-Type: "+contentType)
}

// validateJSONBody rejects bodies that announce themselves as JSON but
// do not parse. Bodies carrying placeholders are left alone since they
// only become JSON after interpolation.
func validateJSONBody(body string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.Contains(trimmed, "{{") {
		return nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil
	}
	if !gjson.Valid(trimmed) {
		return fault.Validationf("cli.body", "body looks like JSON but does not parse")
	}
	return nil
}

// renderExecution applies post-processing and prints the result.
// --check-schema runs first so a schema failure wins over extraction.
func renderExecution(res *runner.Result, formatter Formatter, extractPath, schemaPath string) error {
	if schemaPath != "" {
		report, err := schema.ValidateFile(schemaPath, res.Response.Body)
		if err != nil {
			return err
		}
		if !report.Valid {
			for _, p := range report.Problems {
				fmt.Fprintf(os.Stderr, "schema: %s\n", p)
			}
			return fault.Validationf("cli.check-schema", "response does not match schema (%d problems)", len(report.Problems))
		}
	}

	if extractPath != "" {
		for _, name := range res.Missing {
			fmt.Fprintf(os.Stderr, "warning: unresolved placeholder {{%s}}\n", name)
		}
		value := res.Response.Get(extractPath)
		if !value.Exists() {
			fmt.Fprintf(os.Stderr, "warning: path %q not found in response body\n", extractPath)
		}
		fmt.Println(value.String())
		return nil
	}

	formatter.FormatResult(res)
	return nil
}
