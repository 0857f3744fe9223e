// Package interleave implements kernels for time-bin-interleaved pixel rows.
//
// SDT histogram data stores each image row with the lifetime bins of a
// pixel packed together: bin index varies fastest within a pixel's slot,
// then pixel column. For a row of W pixels with N bins of S bytes each:
//
//	Input:  [p0b0, p0b1, ... p0bN-1, p1b0, p1b1, ...]  (W*N*S bytes)
//
// Extracting one bin per pixel yields a flat row of W samples:
//
//	Output: [p0bK, p1bK, p2bK, ...]  (W*S bytes)
//
// Summing all bins per pixel yields an intensity row of W 16-bit samples.
package interleave

import "encoding/binary"

// ExtractBin copies the binSize-byte sample at bin index bin out of every
// pixel slot in row into consecutive positions of dst. The row holds
// len(row)/(bins*binSize) pixel slots; dst must hold at least that many
// binSize-byte samples.
func ExtractBin(row []byte, bins, binSize, bin int, dst []byte) {
	slot := bins * binSize
	pixels := len(row) / slot
	for col := 0; col < pixels; col++ {
		src := col*slot + bin*binSize
		out := col * binSize
		copy(dst[out:out+binSize], row[src:src+binSize])
	}
}

// Sum16 reduces a bin-interleaved buffer of unsigned 16-bit little-endian
// samples to one sum per pixel, writing each sum as 2 little-endian bytes
// to consecutive positions of dst. Addition is plain 16-bit arithmetic and
// silently wraps on overflow, matching the on-instrument accumulator width.
func Sum16(src []byte, bins int, dst []byte) {
	slot := bins * 2
	pixels := len(src) / slot
	for col := 0; col < pixels; col++ {
		base := col * slot
		var sum uint16
		for t := 0; t < bins; t++ {
			sum += binary.LittleEndian.Uint16(src[base+t*2:])
		}
		binary.LittleEndian.PutUint16(dst[col*2:], sum)
	}
}
