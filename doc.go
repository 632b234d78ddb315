// Package hamal provides an asynchronous dispatch middleware for redux-style
// stores.
//
// A compound action carries a pair of action types; the middleware dispatches
// the request phase, runs a user task, and dispatches the response phase with
// the task result. Named policies, registered in code or declared in YAML,
// rewrite the phase actions at two extension points:
//
//   - beforeRequest – before the request action reaches the store
//   - onResponse    – before the response action reaches the store
//
// End-users typically interact with the middleware via the Service façade
// exposed by the root package:
//
//	srv := hamal.New()
//	_ = srv.LoadPolicies(ctx, "policies.yaml")
//	st := srv.NewStore(reducer, nil, fetch)
//	result := st.Dispatch(ctx, &action.Compound{Type: []string{"FETCH", "FETCHED"}})
//	value, err := dispatcher.Await(ctx, result)
//
// For more details see the individual sub-packages.
package hamal
