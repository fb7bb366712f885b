package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shovelware/shovel/anywork"
	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/pathlib"
	"github.com/shovelware/shovel/plan"
	"github.com/shovelware/shovel/session"
	"github.com/shovelware/shovel/shell"
)

func (it *Engine) submit(task *plan.Task, transfer, cleanup *anywork.Pool) {
	transfer.Backlog(func() {
		if shell.Cancelled() {
			return
		}
		switch task.Type {
		case plan.KindPack:
			it.runPack(task, cleanup)
		case plan.KindMoveLarge:
			it.runMove(task, cleanup)
		default:
			it.taskFailed(task, fmt.Errorf("unknown task type %q", task.Type))
		}
	})
}

func (it *Engine) writeFilelist(filelist string, files []plan.FileEntry) error {
	var buffer bytes.Buffer
	for _, file := range files {
		relative, err := filepath.Rel(it.options.SourceRoot, file.Path)
		if err != nil {
			return err
		}
		buffer.WriteString(filepath.ToSlash(relative))
		buffer.WriteByte('\n')
	}
	return pathlib.WriteFile(filelist, buffer.Bytes(), 0o644)
}

// deleteSources removes the packed originals from the source volume.
// Runs on the cleanup pool, concurrently with extraction on the target
// volume; the two never touch the same disk.
func (it *Engine) deleteSources(files []plan.FileEntry) bool {
	all := true
	for _, file := range files {
		if shell.Cancelled() {
			return false
		}
		if !pathlib.RemoveFile(file.Path) {
			all = false
		}
	}
	return all
}

// runPack walks one pack through its phases: pack to cache, dispatch
// source deletion, extract to target, then chained cleanup. Replays
// with a surviving archive skip straight to the dispatch.
func (it *Engine) runPack(task *plan.Task, cleanup *anywork.Pool) {
	archive := session.ArchivePath(it.cache, task.PackID, it.tool.Extension)
	filelist := session.FilelistPath(it.cache, task.PackID)

	if !task.ReuseArchive {
		err := it.writeFilelist(filelist, task.Files)
		if err != nil {
			it.taskFailed(task, err)
			return
		}
		err = it.tool.Create(it.options.SourceRoot, archive, filelist, it.timeout(), it.retries())
		if errors.Is(err, shell.ErrCancelled) {
			return
		}
		if err != nil {
			it.taskFailed(task, err)
			return
		}
	} else {
		common.Debug("Pack %d reuses archive from previous run.", task.PackID)
	}

	deleted := make(chan bool, 1)
	if it.options.CopyOnly {
		deleted <- true
	} else {
		cleanup.Backlog(func() {
			deleted <- it.deleteSources(task.Files)
		})
	}

	err := it.tool.Extract(archive, it.targetBase(), it.timeout(), it.retries())
	if errors.Is(err, shell.ErrCancelled) {
		return
	}
	if err != nil {
		// sources may already be going away, but their bytes are safe
		// inside the cached archive; resume replays this pack as an
		// extract-only task
		it.taskFailed(task, err)
		return
	}

	cleanup.Backlog(func() {
		sourcesGone := <-deleted
		if shell.Cancelled() {
			return
		}
		if !sourcesGone {
			it.taskFailed(task, fmt.Errorf("pack %d extracted, but some sources resisted deletion", task.PackID))
			return
		}
		pathlib.RemoveFile(archive)
		pathlib.RemoveFile(filelist)
		if !it.options.CopyOnly {
			seeds := make([]string, 0, len(task.Files))
			for _, file := range task.Files {
				seeds = append(seeds, file.Path)
			}
			pathlib.ReclaimEmptyDirs(seeds, it.options.SourceRoot)
		}
		it.taskDone(task, fmt.Sprintf("pack %d done [%d files]", task.PackID, len(task.Files)))
	})
}

// runMove transfers one large file: rename first, copy and delete when
// the volumes differ.
func (it *Engine) runMove(task *plan.Task, cleanup *anywork.Pool) {
	file := task.FileInfo
	relative, err := filepath.Rel(it.options.SourceRoot, file.Path)
	if err != nil {
		it.taskFailed(task, err)
		return
	}
	target := filepath.Join(it.targetBase(), relative)
	_, err = pathlib.EnsureParentDirectory(target)
	if err != nil {
		it.taskFailed(task, err)
		return
	}

	if it.options.CopyOnly {
		err = pathlib.CopyFile(file.Path, target)
		if err != nil {
			it.taskFailed(task, err)
			return
		}
		it.taskDone(task, fmt.Sprintf("copied %s", relative))
		return
	}

	err = os.Rename(pathlib.Longpath(file.Path), pathlib.Longpath(target))
	if err != nil {
		common.Debug("Rename of %q failed (%v), copying across volumes.", file.Path, err)
		err = pathlib.CopyFile(file.Path, target)
		if err != nil {
			it.taskFailed(task, err)
			return
		}
		if shell.Cancelled() {
			return
		}
		pathlib.RemoveFile(file.Path)
	}

	cleanup.Backlog(func() {
		if shell.Cancelled() {
			return
		}
		pathlib.ReclaimEmptyDirs([]string{file.Path}, it.options.SourceRoot)
		it.taskDone(task, fmt.Sprintf("moved %s", relative))
	})
}
