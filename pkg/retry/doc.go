// Package retry holds the timing and retry policy for DDC/CI exchanges.
//
// I2C-borne DDC/CI traffic is noisy and monitors are slow: replies get
// corrupted, devices NAK while busy, and a command issued too soon after
// the previous one is silently ignored. The policy layer owns all of that:
//
//   - Timing carries the standard's minimum inter-command delays, which
//     differ for Get-VCP, Set-VCP and Capabilities exchanges.
//   - Policy decides, from the attempt history and the error at hand,
//     whether to retry after a backoff delay or give up.
//
// The frame codec and value model never retry internally; classification
// and repetition live here exclusively, which keeps both sides independently
// testable.
package retry
