package filter

import "sync"

// Listener observes committed models.
type Listener func(Model)

type subscription struct {
	id int
	fn Listener
}

// Store serializes actions through Reduce and tells subscribers about every
// committed model. Listeners run on the dispatching goroutine, in subscription
// order, and must not call Dispatch themselves.
type Store struct {
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	model     Model
	nextID    int
	listeners []subscription
}

// NewStore seeds a store with an initial model.
func NewStore(initial Model) *Store {
	return &Store{model: initial}
}

// Model returns the latest committed model.
func (s *Store) Model() Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Dispatch reduces action against the current model, commits the result and
// notifies listeners. A failed reduction commits nothing and notifies no one.
func (s *Store) Dispatch(action Action) (Model, error) {
	return s.DispatchWith(action, nil)
}

// DispatchWith is Dispatch with a hook that runs once the model is committed
// and before any listener sees it. onCommit is skipped when reduction fails.
func (s *Store) DispatchWith(action Action, onCommit func(Model)) (Model, error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	current := s.Model()
	next, err := Reduce(current, action)
	if err != nil {
		return current, err
	}

	s.mu.Lock()
	s.model = next
	listeners := make([]subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if onCommit != nil {
		onCommit(next)
	}
	for _, l := range listeners {
		l.fn(next)
	}
	return next, nil
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
