//go:build windows

package runner

import (
	"errors"
	"os"
	"os/exec"
)

// terminate kills the process; Windows has no SIGTERM equivalent for
// console children.
func terminate(p *os.Process) error {
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func detach(*exec.Cmd) {}
