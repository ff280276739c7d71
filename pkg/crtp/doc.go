// Package crtp implements the byte-level packet dialects of the
// command/telemetry link.
package crtp

// A control frame is a port/channel addressed packet protected by a
// one-byte additive checksum:
//
//	[header:1][payload:0..62][checksum:1]
//	header   = (port << 4) | channel
//	checksum = sum(header..payload) mod 256
//
// A config frame starts with the reserved marker 0xAA and is never
// checksum validated by the receiver:
//
//	[0xAA][cmdType:1][payload:0..62]
//
// Multi-byte fields are little-endian.
