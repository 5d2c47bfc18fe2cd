// Package comm implements the L0 link between the firmware and the L1
// controller over a byte stream such as a serial port.
//
// Both peers first agree on each other's sequence numbers: a peer sends
// SYNC-REQ (0xff) followed by its next sequence and expects SYNC-ACK
// (0xfe) followed by the sequence of the other side. Every packet starts
// with the sender's sequence, so a lost or corrupted byte shows up as an
// unexpected sequence and triggers a new synchronization. There is no
// checksum; enable parity on the serial port if bit errors matter.
//
// A packet is encoded as
//
//	seq | E LLL CCC R | [len] | data...
//
// where E marks an event from the firmware, LLL the data length (7 means
// the length follows in the next byte, at most 127), CCC R the command
// code with R set in replies reporting an error. Replies carry the
// sequence of the request as the first data byte.
//
// The receiving side is a protothread resumed for every byte, see Parser.
package comm
