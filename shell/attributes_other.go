//go:build !windows

package shell

import "syscall"

func hiddenConsole() *syscall.SysProcAttr {
	return nil
}
