// Package idle locks an unattended session after a period without activity.
package idle

import (
	"sync"
	"time"
)

// Lock fires onIdle once after a period without Reset calls. A zero period
// disables it.
type Lock struct {
	mu     sync.Mutex
	after  time.Duration
	timer  *time.Timer
	onIdle func()
}

// New returns a stopped lock. Call Reset to start the countdown.
func New(after time.Duration, onIdle func()) *Lock {
	return &Lock{after: after, onIdle: onIdle}
}

// Reset restarts the countdown.
func (l *Lock) Reset() {
	if l.after <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer != nil {
		l.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(l.after, func() {
		l.mu.Lock()
		if l.timer != t {
			l.mu.Unlock()
			return
		}
		l.timer = nil
		l.mu.Unlock()
		l.onIdle()
	})
	l.timer = t
}

// Stop cancels a pending countdown.
func (l *Lock) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// Armed reports whether a countdown is running.
func (l *Lock) Armed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.timer != nil
}

// Wrap returns fn preceded by Reset, for widget callbacks that count as
// activity.
func (l *Lock) Wrap(fn func()) func() {
	return func() {
		l.Reset()
		fn()
	}
}
