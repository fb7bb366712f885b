//go:build !windows

package pathlib

import (
	"os"
	"syscall"

	"github.com/shovelware/shovel/common"
)

// Locker takes an exclusive advisory lock on the given file, creating
// it as needed. Used to keep two migrations from claiming the same
// cache directory.
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
	err = syscall.Flock(int(file.Fd()), int(syscall.LOCK_EX))
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Locked{file}, nil
}

func (it *Locked) Release() error {
	defer it.Close()
	err := syscall.Flock(int(it.Fd()), int(syscall.LOCK_UN))
	common.Trace("LOCKER: release %v with err: %v", it.Name(), err)
	return err
}
