//go:build !unix

package execution

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

// killProcess kills p. It returns os.ErrProcessDone if p already exited.
func killProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
