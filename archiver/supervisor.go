package archiver

import (
	"time"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/pathlib"
	"github.com/shovelware/shovel/shell"
)

// Create packs the files named in filelist (relative paths, resolved
// against cwd) into one store-mode archive. Child processes get plain
// paths, they do not tolerate the extended-length prefix.
func (it *Tool) Create(cwd, archive, filelist string, timeout time.Duration, retries int) error {
	watch := common.Stopwatch("Pack %q took", archive)
	defer watch.Debug()
	argv := it.CreateArgv(pathlib.Shortpath(archive), pathlib.Shortpath(filelist))
	return shell.New(nil, pathlib.Shortpath(cwd), argv...).TimedWithRetry(timeout, retries)
}

// Extract unpacks the archive into targetDir, overwriting existing
// entries.
func (it *Tool) Extract(archive, targetDir string, timeout time.Duration, retries int) error {
	watch := common.Stopwatch("Extract %q took", archive)
	defer watch.Debug()
	_, err := pathlib.EnsureDirectory(targetDir)
	if err != nil {
		return err
	}
	argv := it.ExtractArgv(pathlib.Shortpath(archive), pathlib.Shortpath(targetDir))
	return shell.New(nil, pathlib.Shortpath(targetDir), argv...).TimedWithRetry(timeout, retries)
}
