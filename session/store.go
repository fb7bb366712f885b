package session

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/shovelware/shovel/common"
	"github.com/shovelware/shovel/plan"
)

const flushInterval = 5 * time.Second

// State is the persisted shape of one migration session.
type State struct {
	SourceDir  string       `json:"source_dir"`
	TargetDir  string       `json:"target_dir"`
	TotalBytes int64        `json:"total_transfer_size"`
	Tasks      []*plan.Task `json:"task_plan"`
	Completed  []string     `json:"completed_task_ids"`
}

// Store owns the session file. Task completions flow in through an
// in-process queue consumed by one writer goroutine, which batches
// rewrites on a five second cadence; worst case rework after a crash
// is one batch.
type Store struct {
	path      string
	plan      *plan.Plan
	mutex     sync.Mutex
	completed map[string]bool
	queue     chan string
	idle      chan struct{}
	started   bool
}

func NewStore(cacheDir string, owner *plan.Plan) *Store {
	return &Store{
		path:      SessionFile(cacheDir),
		plan:      owner,
		completed: make(map[string]bool),
		queue:     make(chan string, 10000),
		idle:      make(chan struct{}),
	}
}

// Seed marks task identities already completed by a previous run.
// Only valid before Start.
func (it *Store) Seed(completed map[string]bool) {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	for taskId := range completed {
		it.completed[taskId] = true
	}
}

// MarkCompleted records one durable task completion. Cheap and safe
// from any worker goroutine.
func (it *Store) MarkCompleted(taskId string) {
	it.queue <- taskId
}

func (it *Store) IsCompleted(taskId string) bool {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	return it.completed[taskId]
}

func (it *Store) CompletedCount() int {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	return len(it.completed)
}

func (it *Store) remember(taskId string) {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	it.completed[taskId] = true
}

func (it *Store) snapshot() []string {
	it.mutex.Lock()
	defer it.mutex.Unlock()
	result := make([]string, 0, len(it.completed))
	for taskId := range it.completed {
		result = append(result, taskId)
	}
	return result
}

// Persist writes the full session state once, synchronously. Used at
// session birth so a crash before the first batch still resumes.
func (it *Store) Persist() error {
	return it.flush()
}

func (it *Store) flush() error {
	state, err := LoadState(it.path)
	if err != nil {
		state = &State{
			SourceDir:  it.plan.SourceRoot,
			TargetDir:  it.plan.TargetRoot,
			TotalBytes: it.plan.TotalBytes,
			Tasks:      it.plan.Tasks,
		}
	}
	state.Completed = it.snapshot()
	blob, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(it.path, blob, 0o644)
}

func (it *Store) flushLogged() {
	err := it.flush()
	if err != nil {
		common.Error("session flush", err)
	} else {
		common.Trace("Session file updated with %d completions.", it.CompletedCount())
	}
}

func (it *Store) writer() {
	defer close(it.idle)
	dirty := false
	last := time.Now()
	for {
		select {
		case taskId, ok := <-it.queue:
			if !ok {
				if dirty {
					it.flushLogged()
				}
				return
			}
			it.remember(taskId)
			dirty = true
		case <-time.After(time.Second):
		}
		if dirty && time.Since(last) >= flushInterval {
			it.flushLogged()
			dirty = false
			last = time.Now()
		}
	}
}

func (it *Store) Start() {
	if it.started {
		return
	}
	it.started = true
	go it.writer()
}

// Stop signals the writer with the closed queue, waits for the final
// flush and joins it.
func (it *Store) Stop() {
	if !it.started {
		return
	}
	close(it.queue)
	<-it.idle
	it.started = false
}

// LoadState parses an existing session file.
func LoadState(path string) (*State, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state := &State{}
	err = json.Unmarshal(blob, state)
	if err != nil {
		return nil, err
	}
	return state, nil
}
