package action

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Reporter receives the outcome of an invocation.
type Reporter interface {
	SetOutput(name, value string) error
	SetFailed(message string)
}

// OutputFileEnv names the file the runner collects step outputs from.
const OutputFileEnv = "GITHUB_OUTPUT"

// CommandReporter reports through the workflow command protocol. Outputs
// are appended to OutputFile when set; otherwise they are printed as
// legacy set-output commands.
type CommandReporter struct {
	OutputFile string
	Stdout     io.Writer // nil means os.Stdout

	mu      sync.Mutex
	failed  bool
	midLine bool // the last passthrough byte was not a newline
}

// NewCommandReporter returns a reporter for the current step environment.
func NewCommandReporter() *CommandReporter {
	return &CommandReporter{OutputFile: os.Getenv(OutputFileEnv)}
}

func (r *CommandReporter) SetOutput(name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.OutputFile != "" {
		msg, err := keyValueMessage(name, value)
		if err != nil {
			return err
		}
		return appendFile(r.OutputFile, msg)
	}

	r.endLine()
	fmt.Fprintf(r.stdout(), "::set-output name=%s::%s\n", escapeProperty(name), escapeData(value))
	return nil
}

// SetFailed prints an error annotation and marks the invocation failed.
func (r *CommandReporter) SetFailed(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failed = true
	r.endLine()
	fmt.Fprintf(r.stdout(), "::error::%s\n", escapeData(message))
}

// Failed reports whether SetFailed was called.
func (r *CommandReporter) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// Passthrough returns a writer onto the reporter's stdout for the
// command's own output. Workflow commands printed later start on a fresh
// line when that output did not end with one.
func (r *CommandReporter) Passthrough() io.Writer {
	return &lineTracker{r: r, w: r.stdout()}
}

// endLine terminates a dangling passthrough line. Callers hold r.mu.
func (r *CommandReporter) endLine() {
	if r.midLine {
		fmt.Fprintln(r.stdout())
		r.midLine = false
	}
}

type lineTracker struct {
	r *CommandReporter
	w io.Writer
}

func (t *lineTracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.r.mu.Lock()
		t.r.midLine = p[n-1] != '\n'
		t.r.mu.Unlock()
	}
	return n, err
}

func (r *CommandReporter) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

// keyValueMessage formats a multi-line file command entry using a random
// heredoc delimiter.
func keyValueMessage(name, value string) (string, error) {
	delimiter := "ghadelimiter_" + uuid.New().String()
	if strings.Contains(name, delimiter) {
		return "", fmt.Errorf("unexpected input: name should not contain the delimiter %q", delimiter)
	}
	if strings.Contains(value, delimiter) {
		return "", fmt.Errorf("unexpected input: value should not contain the delimiter %q", delimiter)
	}
	return name + "<<" + delimiter + "\n" + value + "\n" + delimiter + "\n", nil
}

func appendFile(path, msg string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("missing output file at %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	if _, err := f.WriteString(msg); err != nil {
		f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	return f.Close()
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	return strings.ReplaceAll(s, ",", "%2C")
}
