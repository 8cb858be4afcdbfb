// Package logging configures the process-wide zerolog logger.
//
// Diagnostics always go to stderr: stdout carries the supervised
// command's passthrough output and the workflow commands.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// DebugEnv is set to 1 by the workflow runner when step debug logging is on.
const DebugEnv = "RUNNER_DEBUG"

// Init installs a console logger writing to stderr.
func Init(debug bool) {
	color := term.IsTerminal(int(os.Stderr.Fd()))
	InitWriter(os.Stderr, debug, color)
}

// InitWriter installs a console logger writing to w.
func InitWriter(w io.Writer, debug, color bool) {
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !color}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	if debug || os.Getenv(DebugEnv) == "1" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
