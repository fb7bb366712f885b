package session

import (
	"errors"
	"path/filepath"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/pathlib"
	"github.com/shovelware/shovel/plan"
)

// ErrPlanRejected means the stored session does not describe the
// requested migration; the caller treats the run as fresh.
var ErrPlanRejected = errors.New("stored session does not match requested migration")

// Recovery is the resume-time split of a stored session. Resume tasks
// are packs whose archive already sits in the cache; their pack phase
// is sunk cost, so they run first to free cache space fastest.
type Recovery struct {
	State     *State
	Resume    []*plan.Task
	Fresh     []*plan.Task
	Completed map[string]bool
	DoneBytes int64
}

func sameRoot(left, right string) bool {
	return filepath.Clean(left) == filepath.Clean(right)
}

// Recover loads and validates the stored session against the caller's
// roots, folds completed tasks into progress, and flags incomplete
// packs with surviving archives for extract-only replay.
func Recover(cacheDir, sourceRoot, targetRoot, extension string) (*Recovery, error) {
	state, err := LoadState(SessionFile(cacheDir))
	if err != nil {
		return nil, err
	}
	if !sameRoot(state.SourceDir, sourceRoot) || !sameRoot(state.TargetDir, targetRoot) {
		common.Debug("Session roots %q -> %q do not match request %q -> %q.",
			state.SourceDir, state.TargetDir, sourceRoot, targetRoot)
		return nil, ErrPlanRejected
	}
	result := &Recovery{
		State:     state,
		Completed: make(map[string]bool),
	}
	for _, taskId := range state.Completed {
		result.Completed[taskId] = true
	}
	for _, task := range state.Tasks {
		if result.Completed[task.TaskID] {
			result.DoneBytes += task.Bytes()
			continue
		}
		if task.Type == plan.KindPack && pathlib.IsFile(ArchivePath(cacheDir, task.PackID, extension)) {
			task.ReuseArchive = true
			result.Resume = append(result.Resume, task)
			continue
		}
		result.Fresh = append(result.Fresh, task)
	}
	common.Log("Resuming session: %d done, %d archives reusable, %d remaining.",
		len(state.Completed), len(result.Resume), len(result.Fresh))
	return result, nil
}

// Plan rebuilds the full in-memory plan from the stored state, keeping
// the original task list intact for future session rewrites.
func (it *Recovery) Plan() *plan.Plan {
	return &plan.Plan{
		SourceRoot: it.State.SourceDir,
		TargetRoot: it.State.TargetDir,
		TotalBytes: it.State.TotalBytes,
		Tasks:      it.State.Tasks,
	}
}
