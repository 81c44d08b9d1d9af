// Package cmd implements the satchel CLI commands using Cobra.
//
// Available commands:
//   - send: Send an ad-hoc request, optionally saving it
//   - run: Replay a saved request template
//   - save, list, show: Manage saved templates
//   - env: Manage environments for placeholder resolution
//   - history: Show recent executions
//   - graphql: Send GraphQL queries through the same pipeline
//   - import, export: Move requests in and out of the store
//   - init: Create the data files
//
// Commands never print their own errors. Execute formats the error and
// maps its fault kind to the process exit code.
package cmd
