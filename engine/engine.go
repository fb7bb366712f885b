package engine

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/shovelware/shovel/anywork"
	"github.com/shovelware/shovel/archiver"
	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/pathlib"
	"github.com/shovelware/shovel/plan"
	"github.com/shovelware/shovel/session"
	"github.com/shovelware/shovel/shell"
)

// ErrCancelled is what Run returns after a cooperative stop. Aliased
// from shell so callers need just one sentinel.
var ErrCancelled = shell.ErrCancelled

// Engine drives one migration end to end: plan, persist, execute over
// two worker pools, tear down. One Engine per migration.
type Engine struct {
	options  Options
	tool     *archiver.Tool
	cache    string
	store    *session.Store
	progress *progress
	failures uint64
}

func New(options Options) (*Engine, error) {
	options.Defaults()
	err := options.Validate()
	if err != nil {
		return nil, err
	}
	tool, err := archiver.Discover(options.PackCommand, options.UnpackCommand, options.ArchiveExt)
	if err != nil {
		return nil, err
	}
	return &Engine{
		options: options,
		tool:    tool,
		cache:   session.CacheDir(options.SourceRoot),
	}, nil
}

// Stop requests cooperative cancellation: flags the workers, kills
// every registered archiver child and sweeps stragglers. Returns
// immediately; Run still has to be awaited.
func (it *Engine) Stop() {
	common.Log("Stop requested, cancelling transfers.")
	shell.Cancel()
	shell.KillOrphans(filepath.Base(it.tool.Executable))
}

func (it *Engine) say(message string, percent int) {
	if it.options.Status != nil {
		it.options.Status(message, percent)
	}
}

func (it *Engine) timeout() time.Duration {
	return time.Duration(it.options.SubprocessTimeoutS) * time.Second
}

func (it *Engine) retries() int {
	return it.options.SubprocessRetries
}

// targetBase keeps the source's top-level folder name under the
// target root.
func (it *Engine) targetBase() string {
	return filepath.Join(it.options.TargetRoot, filepath.Base(it.options.SourceRoot))
}

func (it *Engine) taskFailed(task *plan.Task, err error) {
	atomic.AddUint64(&it.failures, 1)
	common.Error(fmt.Sprintf("task %s", task.TaskID), err)
	// progress stays monotone for the caller; this credit is pure UI
	// accounting and implies nothing about success
	it.progress.credit(task.Bytes(), fmt.Sprintf("task %s failed", task.TaskID))
}

func (it *Engine) taskDone(task *plan.Task, message string) {
	it.store.MarkCompleted(task.TaskID)
	it.progress.credit(task.Bytes(), message)
}

// prepare resolves the work to do: a resumed session when requested
// and compatible, otherwise a fresh scan and plan. The returned order
// has extract-only replays first.
func (it *Engine) prepare() (*plan.Plan, []*plan.Task, int64, map[string]bool, error) {
	if it.options.ResumeSession && pathlib.IsFile(session.SessionFile(it.cache)) {
		recovery, err := session.Recover(it.cache, it.options.SourceRoot, it.options.TargetRoot, it.tool.Extension)
		if err == nil {
			ordered := append(append([]*plan.Task{}, recovery.Resume...), recovery.Fresh...)
			return recovery.Plan(), ordered, recovery.DoneBytes, recovery.Completed, nil
		}
		common.Uncritical("session resume", err)
		it.say("Stored session unusable, starting fresh.", -1)
	}

	it.say("Scanning source tree...", -1)
	watch := common.Stopwatch("Source scan took")
	files, total, err := plan.Scan(it.options.SourceRoot, it.cache)
	if err != nil {
		return nil, nil, 0, nil, err
	}
	watch.Debug()

	built := plan.Build(it.options.SourceRoot, it.options.TargetRoot, files, total, plan.Options{
		Workers:   it.options.WorkerCount,
		FileCap:   it.options.ChunkFileLimit,
		ByteLimit: int64(it.options.ChunkSizeLimitMB) * 1024 * 1024,
	})
	return built, built.Tasks, 0, nil, nil
}

func (it *Engine) Run() (err error) {
	shell.Reset()
	common.Timeline("migration run started")

	full, ordered, doneBytes, completed, err := it.prepare()
	if err != nil {
		return fmt.Errorf("cannot build migration plan: %w", err)
	}

	it.progress = newProgress(full.TotalBytes, it.options.Status)
	it.progress.preload(doneBytes)

	if it.options.DryRun {
		it.say(fmt.Sprintf("Dry run: %d tasks pending, %d bytes total.", len(ordered), full.TotalBytes), -1)
		return nil
	}

	_, err = pathlib.EnsureDirectory(it.cache)
	if err != nil {
		return fmt.Errorf("cannot create cache directory %q: %w", it.cache, err)
	}
	lock, err := pathlib.Locker(session.LockFile(it.cache))
	if err != nil {
		return fmt.Errorf("cannot lock cache directory %q: %w", it.cache, err)
	}
	defer lock.Release()

	it.store = session.NewStore(it.cache, full)
	if completed != nil {
		it.store.Seed(completed)
	}
	err = it.store.Persist()
	if err != nil {
		return fmt.Errorf("cannot persist session: %w", err)
	}
	it.store.Start()

	transfer := anywork.NewPool("transfer", it.options.WorkerCount)
	cleanup := anywork.NewPool("cleanup", it.options.WorkerCount)

	it.say(fmt.Sprintf("Transferring %d tasks with %d workers.", len(ordered), it.options.WorkerCount), it.progress.percent())
	common.Timeline("pipeline start with %d tasks", len(ordered))

	for _, task := range ordered {
		it.submit(task, transfer, cleanup)
	}

	err = transfer.Sync()
	if err != nil {
		atomic.AddUint64(&it.failures, 1)
		common.Error("transfer pool", err)
	}
	err = cleanup.Sync()
	if err != nil {
		atomic.AddUint64(&it.failures, 1)
		common.Error("cleanup pool", err)
	}
	transfer.Close()
	cleanup.Close()
	common.Timeline("pipeline drained")

	it.store.Stop()

	if shell.Cancelled() {
		it.say("Migration cancelled; session kept for resume.", -1)
		return ErrCancelled
	}
	failed := atomic.LoadUint64(&it.failures)
	if failed > 0 {
		it.say(fmt.Sprintf("Migration incomplete: %d tasks failed; session kept for resume.", failed), -1)
		return fmt.Errorf("%d tasks failed; rerun with resume to retry them", failed)
	}

	err = it.teardown(lock)
	if err != nil {
		return err
	}
	common.Timeline("migration run finished")
	it.say("Migration complete.", 100)
	return nil
}
