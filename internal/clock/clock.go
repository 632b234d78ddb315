// Package clock lets tests pin the time observed by dispatches and policies.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now returns NowFunc()
func Now() time.Time { return NowFunc() }

// Since returns time elapsed since ts according to NowFunc
func Since(ts time.Time) time.Duration { return NowFunc().Sub(ts) }
