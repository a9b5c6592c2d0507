package spawn

import "syscall"

// detachedAttr puts the spawned child in its own session so it survives
// independently of the WM's controlling terminal, matching the
// original's fork+exec detachment (§4.14).
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
