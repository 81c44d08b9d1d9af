// Package template resolves {{variable}} placeholders in request templates.
//
// Interpolation is lenient and pure: missing variables leave the
// placeholder in place and are reported on the returned Result rather than
// logged or raised. What callers do about unresolved placeholders is their
// decision, not this package's.
package template
