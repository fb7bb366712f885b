//go:build windows

package shell

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func hiddenConsole() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}
