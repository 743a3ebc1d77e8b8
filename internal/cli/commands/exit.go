package commands

import (
	"errors"
	"fmt"
)

// exitError carries a process exit code for outcomes that are not failures
// of the command itself: a detected conflict, or a forwarded runner exit.
// The command has already written its report, so main exits with the code
// and no extra message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exit returns an error that makes the process exit with the given code
func exit(code int) error {
	return &exitError{code: code}
}

// ExitStatus returns the exit code carried by err, and whether err is a
// plain exit request rather than a command failure
func ExitStatus(err error) (int, bool) {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code, true
	}
	return 1, false
}
