package engine

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/pathlib"
	"github.com/shovelware/shovel/shell"
)

// ErrPrivilegeDenied marks a symlink attempt without the required
// right. Reported, never retried; the migrated data is already safe.
var ErrPrivilegeDenied = errors.New("symbolic link creation was denied")

// removeTree prefers one native shell invocation over per-file
// syscalls: measurably cheaper and far fewer antivirus interceptions
// on large trees. Falls back to the in-process recursive delete.
func removeTree(context, target string) error {
	argv := nativeRemoveArgv(pathlib.Shortpath(target))
	err := shell.New(nil, ".", argv...).Timed(5 * time.Minute)
	if err == nil && !pathlib.Exists(target) {
		return nil
	}
	common.Debug("Native tree removal of %q fell short (%v), using fallback.", target, err)
	return pathlib.TryRemoveAll(context, target)
}

// teardown runs only after every task completed and nothing was
// cancelled: drop the cache, optionally drop the source root and leave
// a directory symlink in its place.
func (it *Engine) teardown(lock pathlib.Releaser) error {
	it.say("Cleaning up transfer cache.", -1)
	// the lock file lives inside the cache, release before removal
	common.Error("cache lock release", lock.Release())
	err := removeTree("cache teardown", it.cache)
	if err != nil {
		return err
	}

	if it.options.CopyOnly {
		return nil
	}

	it.say("Removing migrated source tree.", -1)
	err = removeTree("source teardown", it.options.SourceRoot)
	if err != nil {
		return err
	}

	if !it.options.CreateSymlink {
		return nil
	}
	// source root must be gone first, the link takes over its name
	err = os.Symlink(it.targetBase(), it.options.SourceRoot)
	if err != nil {
		failure := fmt.Errorf("%w: %v", ErrPrivilegeDenied, err)
		common.Error("symlink creation", failure)
		it.say(fmt.Sprintf("Symbolic link was not created: %v", err), -1)
		return nil
	}
	common.Log("Source root is now a symbolic link to %q.", it.targetBase())
	return nil
}
