package runner

import "time"

// Result holds the output of a supervised run.
type Result struct {
	RunID     string        // unique identifier for this run
	ExitCode  int           // process exit code; -1 if the run did not end with an exit
	Stdout    []byte        // recorded stdout (may be truncated)
	Stderr    []byte        // recorded stderr (may be truncated)
	Truncated bool          // true if either stream exceeded the recording cap
	Duration  time.Duration // time from spawn to resolution
}
