// Package mccs parses MCCS capability strings.
//
// An MCCS-compliant monitor describes itself with a nested, parenthesized
// text string delivered over DDC/CI, e.g.:
//
//	(prot(monitor)type(lcd)model(X)cmds(01 02 03)
//	 vcp(02 04 10 12(01 02 FF))mccs_ver(2.1))
//
// Parse turns a complete string (fragment reassembly is pkg/protocol's job)
// into a read-only Capabilities tree: protocol class, display technology,
// model, supported command opcodes, MCCS version and the VCP feature table
// with its optional discrete value sets. Groups the parser does not
// recognize are preserved as opaque text, since monitors are free to add
// vendor tags.
//
// Parsing is all-or-nothing. A half-parsed capability tree would let a
// caller act on capabilities the monitor never declared, so any structural
// problem fails the whole parse with ErrMalformedCapabilities.
package mccs
