// Package extension provides run-time registries shared by all dispatches:
// the named policy registry consulted when a chain is built, and a registry of
// user-defined Go types that response payloads can be decoded into.
//
// The registries are normally populated through the public APIs under the
// root hamal package, therefore most applications do not need to import
// this package directly.
package extension
