package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/history"
	"github.com/satchelhq/satchel/packages/core/runner"
)

// JSONResult is the machine-readable shape of one execution.
type JSONResult struct {
	Request    *JSONRequest  `json:"request,omitempty"`
	Response   *JSONResponse `json:"response,omitempty"`
	Unresolved []string      `json:"unresolved,omitempty"`
}

// JSONRequest describes the request as it went out, placeholders resolved.
type JSONRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// JSONResponse describes what came back. Duration is in milliseconds.
type JSONResponse struct {
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       any               `json:"body,omitempty"`
	Duration   float64           `json:"duration"`
}

// JSONHistory wraps a history listing.
type JSONHistory struct {
	Count   int             `json:"count"`
	Entries []history.Entry `json:"entries"`
}

// JSONError is the machine-readable error envelope.
type JSONError struct {
	Error JSONErrorDetail `json:"error"`
}

type JSONErrorDetail struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// JSONFormatter renders executions as JSON
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.Result) {
	out := JSONResult{
		Unresolved: result.Missing,
	}

	if req := result.Resolved; req != nil {
		out.Request = &JSONRequest{
			Method:  req.Method,
			URL:     req.URL,
			Headers: req.Headers,
			Body:    req.Body,
		}
	}

	if resp := result.Response; resp != nil {
		out.Response = &JSONResponse{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Headers:    resp.Headers,
			Body:       bodyValue(resp.Body),
			Duration:   float64(resp.DurationMs()),
		}
	}

	f.encode(out)
}

func (f *JSONFormatter) FormatHistory(entries []history.Entry) {
	f.encode(JSONHistory{Count: len(entries), Entries: entries})
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(JSONError{Error: JSONErrorDetail{
		Kind:    string(fault.KindOf(err)),
		Message: err.Error(),
	}})
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No banner in JSON output
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

// bodyValue embeds JSON bodies verbatim and everything else as a string.
func bodyValue(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if gjson.ValidBytes(body) {
		return json.RawMessage(body)
	}
	return string(body)
}
