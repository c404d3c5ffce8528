// Package vcp models Virtual Control Panel features and their values.
//
// Every monitor setting reachable over DDC/CI is addressed by a one-byte
// VCP feature code. A feature is either continuous (a numeric range with a
// current and a maximum value, e.g. luminance) or discrete (one of an
// enumerated set of codes, e.g. the input selector).
//
// The package decodes Get-VCP reply bodies into typed Values, encodes
// Set-VCP bodies, and carries a small registry of well-known feature codes
// loaded from an embedded YAML table.
package vcp
