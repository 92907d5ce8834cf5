package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different outcomes
const (
	ExitSuccess  = 0 // A recommendation was produced
	ExitNoViable = 1 // No local candidate is viable; cloud offload suggested
	ExitError    = 2 // Configuration or runtime error
)

// NoViableError indicates the engine ran successfully but every candidate was
// rejected and no resolution strategy recovered one.
type NoViableError struct {
	Message string
}

func (e *NoViableError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var noViableErr *NoViableError
		if errors.As(err, &noViableErr) {
			os.Exit(ExitNoViable)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
