package anywork

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shovelware/shovel/common"
)

type Work func()
type WorkQueue chan Work
type Failures chan string

// Pool is a fixed-size set of worker goroutines feeding off one queue.
// Panics inside work units are caught, counted and logged, never fatal
// to the pool.
type Pool struct {
	name     string
	pipeline WorkQueue
	failpipe Failures
	group    sync.WaitGroup
	members  sync.WaitGroup
	failures uint64
	closer   sync.Once
}

func catcher(pool *Pool, identity int) {
	catch := recover()
	if catch != nil {
		atomic.AddUint64(&pool.failures, 1)
		pool.failpipe <- fmt.Sprintf("Recovering %q #%d: %v", pool.name, identity, catch)
	}
}

func process(pool *Pool, fun Work, identity int) {
	defer catcher(pool, identity)
	fun()
}

func member(pool *Pool, identity int) {
	defer pool.members.Done()
	for {
		work, ok := <-pool.pipeline
		if !ok {
			break
		}
		process(pool, work, identity)
		pool.group.Done()
	}
}

func watcher(pool *Pool) {
	for fail := range pool.failpipe {
		common.Error(pool.name, fmt.Errorf("%s", fail))
	}
}

// NewPool starts size workers immediately. The queue buffer is large on
// purpose, so slow filesystems never backpressure producers.
func NewPool(name string, size int) *Pool {
	if size < 1 {
		size = 1
	}
	pool := &Pool{
		name:     name,
		pipeline: make(WorkQueue, 100000),
		failpipe: make(Failures, 100),
	}
	go watcher(pool)
	for identity := 0; identity < size; identity += 1 {
		pool.members.Add(1)
		go member(pool, identity)
	}
	return pool
}

func (it *Pool) Backlog(todo Work) {
	if todo != nil {
		it.group.Add(1)
		it.pipeline <- todo
	}
}

// Sync waits until every unit backlogged so far has finished, and
// reports how many of them failed since the previous check.
func (it *Pool) Sync() error {
	it.group.Wait()
	count := atomic.SwapUint64(&it.failures, 0)
	if count > 0 {
		return fmt.Errorf("There has been %d failures in pool %q. See messages above.", count, it.name)
	}
	return nil
}

// Close joins the workers after the backlog drains. Backlog must not
// be called afterwards.
func (it *Pool) Close() {
	it.closer.Do(func() {
		it.group.Wait()
		close(it.pipeline)
		it.members.Wait()
		close(it.failpipe)
	})
}
