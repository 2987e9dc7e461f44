// Package crc computes the CRC-32 values stored in chunk headers.
//
// Chunk headers carry the raw table-driven CRC-32/IEEE register, started from
// Initial and without the final inversion. Passing the result of one call as
// the init value of the next continues the computation over a stream.
package crc

import "hash/crc32"

// Initial is the register value a fresh computation starts from.
const Initial uint32 = 0xFFFFFFFF

// Block updates the CRC register init with p.
func Block(p []byte, init uint32) uint32 {
	// crc32.Update inverts on the way in and out; undo both.
	return ^crc32.Update(^init, crc32.IEEETable, p)
}

// Sum returns the register for p started from Initial. It is the bitwise
// complement of crc32.ChecksumIEEE(p).
func Sum(p []byte) uint32 {
	return Block(p, Initial)
}

// Finalize turns a register into the standard CRC-32 checksum.
func Finalize(register uint32) uint32 {
	return register ^ 0xFFFFFFFF
}
