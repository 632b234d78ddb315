// Package idgen wraps the UUID generator used for dispatch and correlation
// identifiers so that it can be stubbed in tests. Callers should treat the
// identifiers as opaque strings.
package idgen
