// Package shell maps shell names to the arguments that run a command
// string non-interactively.
package shell

import (
	"fmt"
	"strings"
)

// Default is the shell used when none is requested.
const Default = "bash"

// Profile is the fixed invocation template for one shell. The command
// text is appended after Args.
type Profile struct {
	Name string
	Args []string
}

// profiles mirrors the defaults of a workflow "run:" step. Order is the
// order reported to users.
var profiles = []Profile{
	{Name: "bash", Args: []string{"--noprofile", "--norc", "-eo", "pipefail", "-c"}},
	{Name: "sh", Args: []string{"-e", "-c"}},
	{Name: "python", Args: []string{"-c"}},
	{Name: "pwsh", Args: []string{"-command", "."}},
	{Name: "powershell", Args: []string{"-command", "."}},
}

// ErrUnsupportedShell is returned when a shell name has no profile.
type ErrUnsupportedShell struct {
	Name string
}

func (e ErrUnsupportedShell) Error() string {
	return fmt.Sprintf("shell %q is not supported; must be one of: %s", e.Name, strings.Join(Names(), ", "))
}

// Resolve returns the arguments for invoking name. The returned slice is
// a fresh copy and may be appended to.
func Resolve(name string) ([]string, error) {
	for _, p := range profiles {
		if p.Name == name {
			return append([]string(nil), p.Args...), nil
		}
	}
	return nil, ErrUnsupportedShell{Name: name}
}

// Names lists the supported shells.
func Names() []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}

// Profiles returns a copy of the profile table.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = Profile{Name: p.Name, Args: append([]string(nil), p.Args...)}
	}
	return out
}
