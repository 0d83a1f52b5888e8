//go:build !windows

package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid so that Chrome's
// renderer and GPU helpers die with the browser.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort: the group may already be gone.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
