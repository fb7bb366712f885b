//go:build windows

package pathlib

import (
	"os"

	"golang.org/x/sys/windows"

	"github.com/shovelware/shovel/common"
)

// Locker takes an exclusive lock on the given file, creating it as
// needed. Used to keep two migrations from claiming the same cache
// directory.
func Locker(filename string) (Releaser, error) {
	if common.TraceFlag() {
		defer common.Stopwatch("LOCKER: Got lock on %v in", filename).Report()
	}
	common.Trace("LOCKER: Want lock on: %v", filename)
	_, err := EnsureParentDirectory(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	overlapped := &windows.Overlapped{}
	err = windows.LockFileEx(windows.Handle(file.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, 1, 0, overlapped)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Locked{file}, nil
}

func (it *Locked) Release() error {
	defer it.Close()
	overlapped := &windows.Overlapped{}
	err := windows.UnlockFileEx(windows.Handle(it.Fd()), 0, 1, 0, overlapped)
	common.Trace("LOCKER: release %v with err: %v", it.Name(), err)
	return err
}
