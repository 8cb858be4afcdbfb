package runner

import (
	"fmt"
	"time"
)

// ErrLaunch is returned when the shell could not be started, for example
// because its executable is not on PATH.
type ErrLaunch struct {
	Shell string
	Err   error
}

func (e ErrLaunch) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Shell, e.Err)
}

func (e ErrLaunch) Unwrap() error { return e.Err }

// ErrNoOutputTimeout is returned when the command produced no output on
// either stream for Timeout. The command has been sent a termination
// signal by the time the error is returned.
type ErrNoOutputTimeout struct {
	Timeout time.Duration
}

func (e ErrNoOutputTimeout) Error() string {
	return fmt.Sprintf("command timed out due to no output for %s", e.Timeout)
}

// ErrExitCode is returned when the command exited unsuccessfully.
// Code is -1 when the process was killed by a signal; State then
// describes it (e.g. "signal: killed").
type ErrExitCode struct {
	Code  int
	State string
}

func (e ErrExitCode) Error() string {
	if e.Code < 0 && e.State != "" {
		return fmt.Sprintf("process completed with %s", e.State)
	}
	return fmt.Sprintf("process completed with exit code %d", e.Code)
}
