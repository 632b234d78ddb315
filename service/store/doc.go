// Package store provides a minimal unidirectional state container: a reducer
// computes the next state for every dispatched action, subscribers are
// notified afterwards, and middlewares wrap the dispatch function.
//
// It is the host the dispatcher middleware is installed into:
//
//	st := store.New(reducer, nil, store.WithMiddlewares(dispatcher.Middleware()))
//	promise := st.Dispatch(ctx, &action.Compound{Type: []string{"FETCH", "FETCHED"}})
package store
