package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces bursts of events per path into a single callback
// invocation, fired once the path has been quiet for the configured delay.
// Editors and design tools emit several write events per logical save;
// without coalescing every save would trigger redundant conversions, some
// racing the file still being written.
//
// Each pending path owns an independent timer, so events for one path never
// reschedule another. Timer callbacks re-check their own liveness under the
// table lock before firing: a timer cancelled by Trigger or CancelAll never
// reaches the callback, even if it had already left time.AfterFunc's queue.
type Debouncer struct {
	delay    time.Duration
	callback func(path string)

	mu      sync.Mutex
	pending map[string]*pendingTimer
	gen     uint64
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer that waits for delay of quiet per path
// before firing callback with that path.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]*pendingTimer),
	}
}

// Trigger records an event for path. Any pending timer for the same path is
// superseded; the callback fires delay after the last event in the burst.
// An event arriving for a path whose timer already fired simply schedules a
// fresh one.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if pt, ok := d.pending[path]; ok {
		pt.timer.Stop()
	}

	d.gen++
	gen := d.gen

	d.pending[path] = &pendingTimer{
		gen: gen,
		timer: time.AfterFunc(d.delay, func() {
			d.fire(path, gen)
		}),
	}
}

// fire runs on the timer goroutine. It removes the entry and invokes the
// callback outside the lock, but only if this timer is still the live one
// for its path.
func (d *Debouncer) fire(path string, gen uint64) {
	d.mu.Lock()

	pt, ok := d.pending[path]
	if !ok || pt.gen != gen {
		// Superseded or cancelled between expiry and this check.
		d.mu.Unlock()

		return
	}

	delete(d.pending, path)
	d.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("debounced callback panicked", slog.Any("error", r))
		}
	}()

	d.callback(path)
}

// CancelAll cancels and discards every pending timer. Used during a watch
// rebuild so stale triggers never fire against a torn-down watch set. The
// debouncer remains usable afterwards.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for path, pt := range d.pending {
		pt.timer.Stop()
		delete(d.pending, path)
	}
}

// PendingCount returns the number of paths with an open debounce window.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pending)
}
