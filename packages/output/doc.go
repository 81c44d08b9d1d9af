// Package output renders execution results and history listings.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output for scripting
//
// Formatters write to injected writers; the console formatter keeps
// warnings and errors on a separate writer so piped output stays clean.
package output
