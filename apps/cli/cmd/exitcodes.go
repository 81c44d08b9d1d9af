package cmd

import (
	"github.com/satchelhq/satchel/packages/core/fault"
)

// Exit codes for the satchel CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitValidation indicates rejected input
	ExitValidation = 1

	// ExitConfiguration indicates a reference to something that does not exist
	ExitConfiguration = 2

	// ExitNetwork indicates the request could not be delivered
	ExitNetwork = 3

	// ExitStorage indicates a persistence failure
	ExitStorage = 4

	// ExitUsage indicates invalid CLI usage
	ExitUsage = 64
)

// exitCode maps an error to its exit code by fault kind. An HTTP error
// status is a delivered response and never reaches this path.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch fault.KindOf(err) {
	case fault.Validation:
		return ExitValidation
	case fault.Configuration:
		return ExitConfiguration
	case fault.Network:
		return ExitNetwork
	case fault.Storage:
		return ExitStorage
	default:
		return ExitUsage
	}
}
