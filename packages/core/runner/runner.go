package runner

import (
	"time"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/history"
	"github.com/satchelhq/satchel/packages/core/store"
	"github.com/satchelhq/satchel/packages/core/template"
	"github.com/satchelhq/satchel/packages/http"
)

// Dispatcher sends a resolved request. *http.Dispatcher satisfies it.
type Dispatcher interface {
	Send(*http.Request) (*http.Response, error)
}

// Runner wires the store, the interpolator, the dispatcher, and the history
// ledger into one execution path. It holds no per-execution state.
type Runner struct {
	store      *store.Store
	ledger     *history.Ledger
	dispatcher Dispatcher
	interp     *template.Interpolator
}

func New(st *store.Store, ledger *history.Ledger, dispatcher Dispatcher) *Runner {
	return &Runner{
		store:      st,
		ledger:     ledger,
		dispatcher: dispatcher,
		interp:     template.New(),
	}
}

// ExecOptions carries the per-execution knobs.
type ExecOptions struct {
	// Environment names the variable set to interpolate with. Empty means
	// no variables beyond dynamic ones.
	Environment string
	// Timeout bounds the dispatch. Zero applies the dispatcher default.
	Timeout time.Duration
}

// Result is a completed execution. Missing lists placeholder expressions
// that stayed unresolved, in occurrence order. RecordErr is set when the
// response arrived but writing the history entry failed; the execution
// itself still counts as a success.
type Result struct {
	Response  *http.Response
	Resolved  *http.Request
	Missing   []string
	Entry     *history.Entry
	RecordErr error
}

// ExecuteSaved runs a saved template by name.
func (r *Runner) ExecuteSaved(name string, opts ExecOptions) (*Result, error) {
	tmpl, found, err := r.store.GetRequest(name)
	if err != nil {
		return nil, err
	}
	if !found {
		names, nerr := r.store.RequestNames()
		if nerr != nil {
			names = nil
		}
		return nil, fault.Configurationf("runner.execute-saved", names, "no saved request named %q", name)
	}
	return r.Execute(tmpl, opts)
}

// Execute resolves tmpl against the named environment, dispatches it, and
// records the outcome in history. Unresolved placeholders are reported on
// the Result, never fatal: the request goes out with them left verbatim.
func (r *Runner) Execute(tmpl store.RequestTemplate, opts ExecOptions) (*Result, error) {
	vars := map[string]any{}
	if opts.Environment != "" {
		envVars, found, err := r.store.GetEnvironment(opts.Environment)
		if err != nil {
			return nil, err
		}
		if !found {
			names, nerr := r.store.EnvironmentNames()
			if nerr != nil {
				names = nil
			}
			return nil, fault.Configurationf("runner.execute", names, "no environment named %q", opts.Environment)
		}
		vars = envVars
	}

	req, missing := r.interp.ResolveRequest(tmpl, vars, opts.Timeout)

	resp, err := r.dispatcher.Send(req)
	if err != nil {
		// A transport failure is still an attempt worth remembering. The
		// entry carries no status; the dispatch error dominates, so a
		// failed write here is not surfaced.
		if fault.IsKind(err, fault.Network) {
			meta := map[string]any{"error": err.Error()}
			if len(missing) > 0 {
				meta["unresolved"] = missing
			}
			_ = r.ledger.Append(&history.Entry{
				Method:      req.Method,
				URL:         req.URL,
				Environment: opts.Environment,
				Request:     tmpl.Name,
				Meta:        meta,
			})
		}
		return nil, err
	}

	entry := &history.Entry{
		Method:      req.Method,
		URL:         req.URL,
		Status:      resp.StatusCode,
		ElapsedMs:   resp.DurationMs(),
		Environment: opts.Environment,
		Request:     tmpl.Name,
	}
	recordErr := r.ledger.Append(entry)

	return &Result{
		Response:  resp,
		Resolved:  req,
		Missing:   missing,
		Entry:     entry,
		RecordErr: recordErr,
	}, nil
}

// Interpolator exposes the runner's interpolator so callers can register
// extra dynamic value functions.
func (r *Runner) Interpolator() *template.Interpolator {
	return r.interp
}
