package probe

import (
	"sync"

	"github.com/dmitrymomot/connkit/pkg/connection"
	"github.com/dmitrymomot/connkit/pkg/lifecycle"
)

// Tracker keeps the prober and signal sink of every open handle so a
// transport's Close can stop probing and emit close for the right session.
// The zero value is ready to use.
type Tracker[H comparable] struct {
	mu      sync.Mutex
	handles map[H]tracked
}

type tracked struct {
	prober *Prober
	emit   connection.SignalFunc
}

// Track starts p and remembers it together with emit for h.
func (t *Tracker[H]) Track(h H, p *Prober, emit connection.SignalFunc) {
	t.mu.Lock()
	if t.handles == nil {
		t.handles = make(map[H]tracked)
	}
	t.handles[h] = tracked{prober: p, emit: emit}
	t.mu.Unlock()

	p.Start()
}

// Release stops probing h and runs closeFn. On success h is forgotten and
// close is emitted. If closeFn fails probing resumes and the error is
// returned as is. Untracked handles are closed without emitting.
func (t *Tracker[H]) Release(h H, closeFn func() error) error {
	t.mu.Lock()
	tr, ok := t.handles[h]
	t.mu.Unlock()

	if ok {
		tr.prober.Stop()
	}
	if err := closeFn(); err != nil {
		if ok {
			tr.prober.Start()
		}
		return err
	}
	if !ok {
		return nil
	}

	t.mu.Lock()
	delete(t.handles, h)
	t.mu.Unlock()

	tr.emit(lifecycle.SignalClose, nil)
	return nil
}

// Len returns the number of tracked handles.
func (t *Tracker[H]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}
