package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/satchelhq/satchel/packages/builtin"
	"github.com/satchelhq/satchel/packages/core/store"
	"github.com/satchelhq/satchel/packages/http"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Result is the outcome of an interpolation: the substituted text plus one
// entry in Missing for every placeholder occurrence that had no value.
// Interpolation never fails; unresolved placeholders stay in the text
// verbatim.
type Result struct {
	Text    string
	Missing []string
}

// Interpolator substitutes {{key}} placeholders. Keys are trimmed of
// surrounding whitespace, so {{ host }} and {{host}} are the same key.
//
// Three expression forms are recognized:
//   - plain keys, looked up in the variable set
//   - $NAME, read from the process environment
//   - name(args), evaluated through the builtin function registry
type Interpolator struct {
	funcs *builtin.Registry
}

func New() *Interpolator {
	return &Interpolator{funcs: builtin.NewRegistry()}
}

// Funcs exposes the function registry so callers can register their own
// dynamic values.
func (ip *Interpolator) Funcs() *builtin.Registry {
	return ip.funcs
}

// Interpolate substitutes every placeholder in text against vars. Each
// occurrence resolves independently; vars is never mutated. A nil variable
// value substitutes as an empty string, any other value through fmt's %v.
func (ip *Interpolator) Interpolate(text string, vars map[string]any) Result {
	var missing []string

	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			if val := os.Getenv(expr[1:]); val != "" {
				return val
			}
			missing = append(missing, expr)
			return match
		}

		if strings.Contains(expr, "(") {
			if result, ok := ip.funcs.Call(expr); ok {
				return coerce(result)
			}
			missing = append(missing, expr)
			return match
		}

		if val, ok := vars[expr]; ok {
			return coerce(val)
		}
		missing = append(missing, expr)
		return match
	})

	return Result{Text: out, Missing: missing}
}

// ResolveHeaders interpolates the value part of each "Name: Value" line and
// collects them into a header map. Header names are never interpolated.
// Duplicate names keep the last value; lines without a colon are dropped.
func (ip *Interpolator) ResolveHeaders(lines []string, vars map[string]any) (map[string]string, []string) {
	headers := make(map[string]string, len(lines))
	var missing []string

	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		res := ip.Interpolate(strings.TrimSpace(value), vars)
		missing = append(missing, res.Missing...)
		headers[strings.TrimSpace(name)] = res.Text
	}
	return headers, missing
}

// ResolveRequest interpolates a whole template into a dispatchable
// request: the URL, each header value and the body, each occurrence
// independently. Header names are never interpolated and tmpl is not
// mutated. The second return lists every unresolved placeholder.
func (ip *Interpolator) ResolveRequest(tmpl store.RequestTemplate, vars map[string]any, timeout time.Duration) (*http.Request, []string) {
	urlRes := ip.Interpolate(tmpl.URL, vars)
	headers, headerMissing := ip.ResolveHeaders(tmpl.Headers, vars)
	bodyRes := ip.Interpolate(tmpl.Body, vars)

	missing := append(append(urlRes.Missing, headerMissing...), bodyRes.Missing...)

	req := http.NewRequest(tmpl.Method, urlRes.Text)
	req.Headers = headers
	req.SetBody(bodyRes.Text)
	req.SetTimeout(timeout)
	return req, missing
}

func coerce(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
