package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/pretty"

	"github.com/satchelhq/satchel/packages/core/history"
	"github.com/satchelhq/satchel/packages/core/runner"
	"github.com/satchelhq/satchel/packages/http"
)

type ConsoleFormatter struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	noColor   bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

// WithErrWriter redirects warnings and errors. Defaults to stderr so
// piped output stays machine-clean.
func WithErrWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.errWriter = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.Result) {
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, name := range result.Missing {
		fmt.Fprintf(f.errWriter, "%s unresolved placeholder {{%s}}\n", yellow("warning:"), name)
	}
	if result.RecordErr != nil {
		fmt.Fprintf(f.errWriter, "%s history not recorded: %v\n", yellow("warning:"), result.RecordErr)
	}

	if f.verbose && result.Resolved != nil {
		req := result.Resolved
		fmt.Fprintf(f.writer, "%s\n", dim(fmt.Sprintf("> %s %s", req.Method, req.URL)))
		for _, k := range sortedKeys(req.Headers) {
			fmt.Fprintf(f.writer, "%s\n", dim(fmt.Sprintf("> %s: %s", k, req.Headers[k])))
		}
		if req.Body != "" {
			fmt.Fprintf(f.writer, "%s\n", dim("> "+req.Body))
		}
	}

	resp := result.Response
	if resp == nil {
		return
	}

	fmt.Fprintf(f.writer, "%s %s\n", f.statusLine(resp), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose {
		for _, k := range sortedKeys(resp.Headers) {
			fmt.Fprintf(f.writer, "%s\n", dim(k+": "+resp.Headers[k]))
		}
	}

	if len(resp.Body) > 0 {
		fmt.Fprint(f.writer, f.renderBody(resp))
	}
}

func (f *ConsoleFormatter) statusLine(resp *http.Response) string {
	line := resp.Status
	if line == "" {
		line = fmt.Sprintf("%d", resp.StatusCode)
	}
	switch {
	case resp.IsSuccess():
		return color.New(color.FgGreen, color.Bold).Sprint(line)
	case resp.IsRedirect():
		return color.New(color.FgYellow, color.Bold).Sprint(line)
	default:
		return color.New(color.FgRed, color.Bold).Sprint(line)
	}
}

func (f *ConsoleFormatter) renderBody(resp *http.Response) string {
	body := resp.Body
	if resp.IsJSON() {
		body = pretty.Pretty(body)
		if !color.NoColor {
			body = pretty.Color(body, nil)
		}
	}
	out := string(body)
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

func (f *ConsoleFormatter) FormatHistory(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(f.writer, "No history yet.")
		return
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	for _, e := range entries {
		stamp := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		fmt.Fprintf(f.writer, "%s  %-7s %s  %s", dim(stamp), e.Method, f.historyStatus(e), e.URL)
		if e.Status != 0 {
			fmt.Fprintf(f.writer, " %s", cyan(fmt.Sprintf("(%dms)", e.ElapsedMs)))
		}
		if e.Environment != "" {
			fmt.Fprintf(f.writer, " %s", dim("env="+e.Environment))
		}
		if e.Request != "" {
			fmt.Fprintf(f.writer, " %s", dim("request="+e.Request))
		}
		fmt.Fprintf(f.writer, "\n")
	}
}

func (f *ConsoleFormatter) historyStatus(e history.Entry) string {
	if e.Status == 0 {
		return color.New(color.FgRed).Sprint("ERR")
	}
	s := fmt.Sprintf("%d", e.Status)
	switch {
	case e.Status < 300:
		return color.New(color.FgGreen).Sprint(s)
	case e.Status < 400:
		return color.New(color.FgYellow).Sprint(s)
	default:
		return color.New(color.FgRed).Sprint(s)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.errWriter, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("satchel"), version)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
