// Package runner orchestrates a single request execution.
//
// An execution is: look up the environment, interpolate the template,
// dispatch the request, record the outcome in history. The runner owns the
// order and the policy (lenient interpolation, success and failure entries);
// the collaborators own the mechanics.
package runner
