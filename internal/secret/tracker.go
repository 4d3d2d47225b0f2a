package secret

import "sync"

// Tracker remembers every copy of a secret it has handed out.
type Tracker struct {
	mu   sync.Mutex
	bufs []*Buffer
}

// Track registers b and returns it. The tracker does not own b exclusively:
// the holder may Destroy it early, and such copies are dropped on the next
// Track.
func (t *Tracker) Track(b *Buffer) *Buffer {
	if b == nil {
		return nil
	}
	t.mu.Lock()
	live := t.bufs[:0]
	for _, old := range t.bufs {
		if old.Alive() {
			live = append(live, old)
		}
	}
	clear(t.bufs[len(live):])
	t.bufs = append(live, b)
	t.mu.Unlock()
	return b
}

// Len reports how many copies are registered and not yet pruned.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.bufs)
}

// Wipe destroys every tracked buffer and forgets them.
func (t *Tracker) Wipe() {
	t.mu.Lock()
	bufs := t.bufs
	t.bufs = nil
	t.mu.Unlock()

	for _, b := range bufs {
		b.Destroy()
	}
}
