package engine

import (
	"errors"
	"fmt"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/pathlib"
)

// ErrConfigInvalid tags every configuration complaint.
var ErrConfigInvalid = errors.New("invalid configuration")

// StatusFunc receives user-facing status lines. Percent is 0..100, or
// negative when the message carries no progress information.
type StatusFunc func(message string, percent int)

type Options struct {
	SourceRoot         string
	TargetRoot         string
	WorkerCount        int
	ChunkSizeLimitMB   int
	ChunkFileLimit     int
	SubprocessTimeoutS int
	SubprocessRetries  int
	CopyOnly           bool
	CreateSymlink      bool
	ResumeSession      bool
	DryRun             bool
	PackCommand        string
	UnpackCommand      string
	ArchiveExt         string
	Status             StatusFunc
}

func (it *Options) Defaults() {
	if it.WorkerCount == 0 {
		it.WorkerCount = common.OptimalWorkerCount()
	}
	if it.ChunkSizeLimitMB == 0 {
		it.ChunkSizeLimitMB = 64
	}
	if it.ChunkFileLimit == 0 {
		it.ChunkFileLimit = 5000
	}
	if it.SubprocessTimeoutS == 0 {
		it.SubprocessTimeoutS = 10
	}
	if it.SubprocessRetries == 0 {
		it.SubprocessRetries = 3
	}
}

func invalid(form string, details ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, fmt.Sprintf(form, details...))
}

func (it *Options) Validate() error {
	if it.SourceRoot == "" || !pathlib.IsDir(it.SourceRoot) {
		return invalid("source root %q is not an existing directory", it.SourceRoot)
	}
	if it.TargetRoot == "" {
		return invalid("target root is missing")
	}
	source, err := pathlib.Abs(it.SourceRoot)
	if err != nil {
		return invalid("source root %q: %v", it.SourceRoot, err)
	}
	target, err := pathlib.Abs(it.TargetRoot)
	if err != nil {
		return invalid("target root %q: %v", it.TargetRoot, err)
	}
	it.SourceRoot, it.TargetRoot = source, target
	if it.WorkerCount < 1 {
		return invalid("worker count %d is not positive", it.WorkerCount)
	}
	if it.ChunkSizeLimitMB < 1 {
		return invalid("chunk size limit %d is not positive", it.ChunkSizeLimitMB)
	}
	if it.ChunkFileLimit < 1 {
		return invalid("chunk file limit %d is not positive", it.ChunkFileLimit)
	}
	if it.SubprocessTimeoutS < 1 {
		return invalid("subprocess timeout %d is not positive", it.SubprocessTimeoutS)
	}
	return nil
}
