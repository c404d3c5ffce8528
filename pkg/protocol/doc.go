// Package protocol orchestrates DDC/CI command exchanges.
//
// A Conn drives one monitor: it builds request frames with pkg/wire, writes
// them through the transport, enforces the standard's minimum delays, reads
// and decodes replies, and applies the retry policy from pkg/retry when the
// bus misbehaves. Reply bodies are handed to pkg/vcp (values) or pkg/mccs
// (capability strings) for interpretation.
//
// Every exchange walks a small state machine:
//
//	Idle -> Sent -> AwaitingReply -> Decoded   (success)
//	                     |    ^
//	                     v    | retry (transient error, same frame)
//	                    Sent  |
//	                     |
//	                     v
//	                  Failed                   (fatal error or ceiling)
//
// Exchanges are synchronous and serialized per Conn; when the transport is
// a *transport.SharedBus, the bus lock is additionally held across each
// write+read pair so sessions on the same bus cannot interleave. There is
// no mid-exchange cancellation beyond the context: an abandoned exchange
// means "outcome unknown" and a Set must not be assumed applied.
package protocol
