// Package progress defines primitives for reporting and aggregating the
// progress of compound dispatches handled by the dispatcher. It abstracts
// away how updates are consumed so that callers can observe in-flight,
// completed and failed dispatches in a uniform way.
package progress
