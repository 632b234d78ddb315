// Package dispatcher implements the asynchronous dispatch middleware. It
// intercepts compound actions, emits the request phase action, runs the
// user task, emits the response phase action and settles a Promise with the
// task outcome. Registered policies rewrite each phase action on its way to
// the store. Actions without a compound type pass through unchanged.
package dispatcher
