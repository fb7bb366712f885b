//go:build windows

package pretty

import (
	"os"

	"golang.org/x/sys/windows"
)

func localSetup(interactive bool) {
	Iconic = false
	if !interactive {
		return
	}
	handle := windows.Handle(os.Stderr.Fd())
	var mode uint32
	err := windows.GetConsoleMode(handle, &mode)
	if err != nil {
		Disabled = true
		return
	}
	mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	err = windows.SetConsoleMode(handle, mode)
	if err != nil {
		Disabled = true
	}
}
