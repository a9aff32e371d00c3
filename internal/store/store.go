// Package store combines the annotation slices behind one synchronous
// dispatcher and provides the asynchronous actions that talk to the
// annotation service.
package store

import (
	"log/slog"
	"sync"

	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/annotation"
	"github.com/starford/vellum/internal/collab"
	"github.com/starford/vellum/internal/creator"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/promoter"
	"github.com/starford/vellum/internal/selection"
)

// Options identifies the file being annotated and what the viewer may do.
type Options struct {
	FileID               string
	FileVersionID        string
	IsCurrentFileVersion bool
	Permissions          models.Permissions
}

// RootState is a snapshot of every slice.
type RootState struct {
	Annotations annotation.State
	Creator     creator.State
	Promoter    promoter.State
	Selection   selection.State
	Users       collab.State
	Options     Options
}

// Listener is notified after every dispatch with the new state. Listeners run
// on the dispatching goroutine and must not call Dispatch.
type Listener func(RootState)

// Store is the single writer of RootState. Dispatch is synchronous and
// atomic: a reader never observes a partially applied action, and listeners
// see states in the order the actions were applied.
type Store struct {
	logger *slog.Logger

	dmu   sync.Mutex // held for a whole dispatch, notifications included
	mu    sync.RWMutex
	state RootState

	lmu       sync.Mutex
	nextID    int
	listeners map[int]Listener
}

// New creates a store seeded with opts.
func New(opts Options, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger: logger,
		state: RootState{
			Annotations: annotation.InitialState(),
			Creator:     creator.InitialState(),
			Users:       collab.InitialState(),
			Options:     opts,
		},
		listeners: make(map[int]Listener),
	}
}

// State returns the current snapshot.
func (s *Store) State() RootState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch runs a through every slice reducer and notifies listeners.
func (s *Store) Dispatch(a action.Action) {
	s.dmu.Lock()
	defer s.dmu.Unlock()

	s.mu.Lock()
	next := reduce(s.state, a)
	s.state = next
	s.mu.Unlock()

	s.logger.Debug("store: dispatch", slog.String("action", a.Type()))

	for _, l := range s.snapshotListeners() {
		l(next)
	}
}

// Subscribe registers l and returns the function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

func (s *Store) snapshotListeners() []Listener {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func reduce(st RootState, a action.Action) RootState {
	st.Annotations = annotation.Reduce(st.Annotations, a)
	st.Creator = creator.Reduce(st.Creator, a)
	st.Promoter = promoter.Reduce(st.Promoter, a)
	st.Selection = selection.Reduce(st.Selection, a)
	st.Users = collab.Reduce(st.Users, a)
	return st
}
