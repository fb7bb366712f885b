//go:build windows

package pathlib

import "golang.org/x/sys/windows"

func clearReadonly(target string) {
	pointer, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return
	}
	attributes, err := windows.GetFileAttributes(pointer)
	if err != nil || attributes&windows.FILE_ATTRIBUTE_READONLY == 0 {
		return
	}
	windows.SetFileAttributes(pointer, attributes&^windows.FILE_ATTRIBUTE_READONLY)
}
