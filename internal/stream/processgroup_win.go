//go:build windows
// +build windows

package stream

import (
	"os/exec"
	"strconv"
	"syscall"
)

func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// Stop kills the transcoder together with any children it spawned.
func (p *Process) Stop() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}

	kill := exec.Command("TASKKILL", "/T", "/F", "/PID", strconv.Itoa(p.cmd.Process.Pid))
	if err := kill.Run(); err != nil {
		p.logger.Err(err).Msg("failed to kill process group")
	}
}
