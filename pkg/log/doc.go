// Package log captures protocol events from the DDC/CI engine.
//
// The engine does not write human-oriented log lines; it emits structured
// events (frames on the bus, exchange attempts, errors) to a Logger the
// application supplies. Events can be discarded (NoopLogger), streamed to
// a CBOR file for later analysis with ddc-log (FileLogger), bridged into
// the application's slog output (SlogAdapter), or fanned out (MultiLogger).
//
// Logging must never disrupt the protocol: implementations swallow their
// own errors and are expected to return quickly.
package log
