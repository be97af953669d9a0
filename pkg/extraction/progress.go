package extraction

import "sync"

// ProgressCallback reports classification progress. completed and total count
// fibers. If message is not empty and total is 0 the call is informational.
// Calls are serialised, so the callback need not be safe for concurrent use.
type ProgressCallback func(completed, total int, message string)

// progressReporter counts processed fibers across workers
type progressReporter struct {
	mu        sync.Mutex
	callback  ProgressCallback
	completed int
	total     int
}

func newProgressReporter(callback ProgressCallback, total int) *progressReporter {
	return &progressReporter{callback: callback, total: total}
}

func (p *progressReporter) tick() {
	if p == nil || p.callback == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	p.callback(p.completed, p.total, "")
}
