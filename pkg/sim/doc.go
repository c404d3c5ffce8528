// Package sim provides an in-memory DDC/CI monitor.
//
// Monitor implements transport.Transport and answers like a VESA display:
// it decodes request frames, keeps a VCP feature table, serves its
// capability string in offset-addressed fragments, and returns the null
// frame when it has nothing to say. Fault injection knobs (NAKs, corrupted
// checksums, busy periods) reproduce the bus noise the retry policy exists
// for.
//
// The simulator backs the package tests and the ddc-shell tool; it is also
// handy as a stand-in device for applications developed away from real
// hardware.
package sim
