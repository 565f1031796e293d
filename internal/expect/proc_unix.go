//go:build !windows

package expect

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own group so Close can take down
// whatever it spawned (npm -> node -> the signer) in one go.
func setProcessGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// killProcessGroup kills p's process group. pty children are session
// leaders, so their pid is also their group id.
func killProcessGroup(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err != nil {
		return p.Kill()
	}
	return nil
}
