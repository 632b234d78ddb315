// Package builtin provides policy kinds that can be declared in YAML:
// meta, timestamp, correlate, error, decode and secret.
package builtin
