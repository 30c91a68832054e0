//go:build !windows
// +build !windows

package stream

import "syscall"

func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// Stop kills the transcoder together with any children it spawned.
func (p *Process) Stop() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}

	pgid, err := syscall.Getpgid(p.cmd.Process.Pid)
	if err == nil {
		err := syscall.Kill(-pgid, syscall.SIGKILL)
		p.logger.Err(err).Msg("killing process group")
	} else {
		p.logger.Err(err).Msg("could not get process group id")
		err := p.cmd.Process.Kill()
		p.logger.Err(err).Msg("killing process")
	}
}
