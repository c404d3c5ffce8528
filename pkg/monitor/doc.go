// Package monitor is the high-level API for controlling one display.
//
// Monitor wraps a protocol session with the conveniences applications
// want: a lazily fetched and cached capability tree, brightness and
// contrast as 0..1 fractions independent of the panel's raw range, typed
// input source and OSD language selection, and polling for settings the
// user changed at the physical controls.
package monitor
