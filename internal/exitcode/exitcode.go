package exitcode

import (
	"errors"

	"github.com/detent/workflow-doctor/internal/workflow"
)

// Exit codes. Warnings in a report never change the exit code.
const (
	// Success means every discovered workflow was analyzed, or none were found
	Success = 0

	// Failure covers a missing workflows directory, invalid flags and files
	// that could not be parsed
	Failure = 1

	// Environment means the YAML parser failed its startup check
	Environment = 2
)

// FromError maps an error returned by the command to an exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	if errors.Is(err, workflow.ErrParserUnavailable) {
		return Environment
	}
	return Failure
}
