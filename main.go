package main

import (
	"os"

	"github.com/detent/workflow-doctor/cmd"
	"github.com/detent/workflow-doctor/internal/exitcode"
	"github.com/detent/workflow-doctor/internal/sentry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cleanup := sentry.Init(cmd.Version)
	defer cleanup()
	defer sentry.RecoverAndPanic()

	if err := cmd.Execute(); err != nil {
		code := exitcode.FromError(err)
		// Findings, parse failures and bad flags are user outcomes, not crashes.
		if code == exitcode.Environment {
			sentry.CaptureError(err)
		}
		return code
	}
	return exitcode.Success
}
