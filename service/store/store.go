package store

import (
	"context"
	"sync"

	"github.com/viant/hamal/policy"
)

// Dispatch represents a dispatch function, the host store returns the dispatched action
type Dispatch func(ctx context.Context, anAction interface{}) interface{}

// Middleware wraps the next dispatch function with access to the store
type Middleware func(api policy.Store) func(next Dispatch) Dispatch

// Reducer computes the next state, reducers must not dispatch
type Reducer func(state interface{}, anAction interface{}) interface{}

// Listener is notified with the state after every reduced action
type Listener func(state interface{})

// Store represents a state container
type Store struct {
	reducer     Reducer
	state       interface{}
	middlewares []Middleware
	dispatch    Dispatch
	listeners   map[int]Listener
	nextID      int
	mux         sync.RWMutex
	listenerMux sync.RWMutex
}

// State returns current state
func (s *Store) State() interface{} {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.state
}

// Dispatch dispatches an action through the middlewares
func (s *Store) Dispatch(ctx context.Context, anAction interface{}) interface{} {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.dispatch(ctx, anAction)
}

// Subscribe registers a listener, the returned function unsubscribes it
func (s *Store) Subscribe(listener Listener) func() {
	s.listenerMux.Lock()
	defer s.listenerMux.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	return func() {
		s.listenerMux.Lock()
		defer s.listenerMux.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) reduce(ctx context.Context, anAction interface{}) interface{} {
	s.mux.Lock()
	s.state = s.reducer(s.state, anAction)
	state := s.state
	s.mux.Unlock()

	s.listenerMux.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.listenerMux.RUnlock()
	for _, listener := range listeners {
		listener(state)
	}
	return anAction
}

// applyMiddlewares composes middlewares, the first one is the outermost
func (s *Store) applyMiddlewares() {
	dispatch := Dispatch(s.reduce)
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		dispatch = s.middlewares[i](s)(dispatch)
	}
	s.dispatch = dispatch
}

// New creates a store
func New(reducer Reducer, initial interface{}, options ...Option) *Store {
	ret := &Store{
		reducer:   reducer,
		state:     initial,
		listeners: make(map[int]Listener),
	}
	if ret.reducer == nil {
		ret.reducer = func(state interface{}, _ interface{}) interface{} { return state }
	}
	for _, option := range options {
		option(ret)
	}
	ret.applyMiddlewares()
	return ret
}
