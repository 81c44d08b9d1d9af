package http

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/satchelhq/satchel/packages/core/fault"
)

// Doer executes a resolved request. *Client satisfies it; tests substitute
// stubs to exercise dispatch behavior without a network.
type Doer interface {
	Do(*Request) (*Response, error)
}

// Dispatcher fronts a Doer with the execution contract: timeout defaulting
// and validation, content-type defaulting, wall-clock measurement, and a
// typed error for every transport failure.
type Dispatcher struct {
	doer Doer
}

func NewDispatcher(doer Doer) *Dispatcher {
	return &Dispatcher{doer: doer}
}

// Send dispatches req and returns the server's response, whatever its
// status. The returned response carries the elapsed wall-clock time as
// measured here. Transport failures come back as network errors; req itself
// is never mutated.
func (d *Dispatcher) Send(req *Request) (*Response, error) {
	if req == nil {
		return nil, fault.Validationf("dispatch.send", "request must not be nil")
	}
	if req.Timeout < 0 {
		return nil, fault.Validationf("dispatch.send", "timeout must not be negative, got %d ms", req.Timeout.Milliseconds())
	}
	if err := ValidateURL(req.URL); err != nil {
		return nil, fault.Validationf("dispatch.send", "%v", err)
	}

	r := req.Clone()
	if r.Timeout == 0 {
		r.Timeout = DefaultTimeout
	}
	if r.Body != "" && !r.HasHeader("Content-Type") {
		r.SetHeader("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := d.doer.Do(r)
	elapsed := time.Since(start)

	if err != nil {
		return nil, classify(err, r)
	}

	resp.Duration = elapsed
	return resp, nil
}

// classify turns a transport error into a network fault whose message
// carries the most useful detail: the timeout that fired, or the URL that
// could not be reached.
func classify(err error, req *Request) *fault.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fault.Networkf("dispatch.send", err, "request timed out after %d ms", req.Timeout.Milliseconds())
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		return fault.Networkf("dispatch.send", err, "cannot reach %s", req.URL)
	}

	return fault.Networkf("dispatch.send", err, "request failed")
}
