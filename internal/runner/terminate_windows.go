//go:build windows

package runner

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

// terminate kills the shell. Windows has no SIGTERM equivalent that
// console processes reliably honour.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
