package store

import (
	"sync"

	"github.com/ds124wfegd/negative-web/internal/entity"
)

// Transition reports the effect of one dispatch.
type Transition struct {
	Prev    State
	Next    State
	Applied bool
}

// Superseded reports whether the transition dropped the download that was
// visible before it.
func (t Transition) Superseded() bool {
	return t.Prev.Download != nil && (t.Next.Download == nil || t.Next.Download.ID != t.Prev.Download.ID)
}

type Observer func(State)

// Store is the single writer of one session's state.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	state     State
	observers []Observer
}

func New(initial State) *Store {
	return &Store{state: initial}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive every applied snapshot, in dispatch
// order. Observers run outside the state lock but must not call back into
// the store.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Store) Dispatch(a Action) Transition {
	s.mu.Lock()
	prev := s.state
	next, applied := Reduce(prev, a)
	if applied {
		s.state = next
	}
	observers := s.observers
	if !applied {
		s.mu.Unlock()
		return Transition{Prev: prev, Next: next, Applied: applied}
	}

	// notifyMu is taken before the state lock is released so observers see
	// snapshots in the order they were applied.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
	return Transition{Prev: prev, Next: next, Applied: applied}
}

// Restore rebuilds a state from a persisted view. Transient parts (the
// picked file, the in-flight flag, the download handle) are not restored.
func Restore(ui entity.UIState) State {
	ui.SelectedFile = nil
	ui.Processing = false
	ui.Download = nil
	return State{UIState: ui}
}
