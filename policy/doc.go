// Package policy provides named, chain-composable transformations applied to
// an action at a given extension point of the dispatch pipeline, for example
// to stamp request metadata before a request phase is reduced or to annotate
// a response phase with a task error.
package policy
