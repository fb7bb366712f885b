package common

import (
	"fmt"
	"sync"
	"time"
)

type timevent struct {
	when time.Time
	what string
}

var (
	timeline      []*timevent
	timelineMutex = sync.Mutex{}
	birth         = time.Now()
)

// Timeline records a named moment for the --trace summary. Cheap enough
// to call unconditionally from hot paths.
func Timeline(form string, details ...interface{}) {
	event := &timevent{
		when: time.Now(),
		what: fmt.Sprintf(form, details...),
	}
	timelineMutex.Lock()
	defer timelineMutex.Unlock()
	timeline = append(timeline, event)
}

func TimelineReport() {
	if !TraceFlag() {
		return
	}
	timelineMutex.Lock()
	defer timelineMutex.Unlock()
	death := time.Now()
	total := death.Sub(birth).Milliseconds()
	if total < 1 {
		total = 1
	}
	Trace("--- timeline [%d events, %dms total] ---", len(timeline), total)
	for _, event := range timeline {
		offset := event.when.Sub(birth).Milliseconds()
		Trace("%6.1f%% %6dms %s", float64(offset)*100.0/float64(total), offset, event.what)
	}
	Trace("--- timeline end ---")
}
