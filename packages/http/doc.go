// Package http dispatches resolved requests and models their responses.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts, redirects, TLS verification, and proxying
//   - A Dispatcher enforcing the execution contract (timeout validation,
//     content-type defaulting, elapsed-time measurement)
//   - Typed network errors that distinguish timeouts from unreachable hosts
//
// A response with an error status is still a response. Only transport
// failures surface as errors.
package http
