package engine

import "sync"

// progress is the single shared byte counter. The status callback is
// throttled to fire only when the integer percentage actually moves,
// so twenty thousand tiny completions do not flood the caller.
type progress struct {
	mutex       sync.Mutex
	total       int64
	processed   int64
	lastPercent int
	status      StatusFunc
}

func newProgress(total int64, status StatusFunc) *progress {
	return &progress{
		total:       total,
		lastPercent: -1,
		status:      status,
	}
}

// preload folds bytes from a previous run in without emitting.
func (it *progress) preload(bytes int64) {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	it.processed += bytes
	it.lastPercent = it.percentLocked()
}

func (it *progress) percentLocked() int {
	if it.total <= 0 {
		return 100
	}
	percent := int(it.processed * 100 / it.total)
	if percent > 100 {
		percent = 100
	}
	return percent
}

func (it *progress) percent() int {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	return it.percentLocked()
}

func (it *progress) credit(bytes int64, message string) {
	it.mutex.Lock()
	it.processed += bytes
	percent := it.percentLocked()
	advanced := percent > it.lastPercent
	if advanced {
		it.lastPercent = percent
	}
	status := it.status
	it.mutex.Unlock()
	if advanced && status != nil {
		status(message, percent)
	}
}
