//go:build !windows

package transfer

import "syscall"

// sysProcAttr puts the tool in its own process group so signals can target
// the whole tree.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
