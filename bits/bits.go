// Package bits provides the low-level bit-field primitives shared by the
// instruction decoder and the disassembler: extracting an unsigned field out
// of a 32-bit instruction word, and sign-extending a narrower value up to a
// full 32-bit signed integer.
package bits

// Extract returns the unsigned value of the length-bit field of word that
// begins at bit start. Callers are expected to pass 0 <= start and
// 1 <= length <= 32-start; Extract does not validate its arguments.
func Extract(word uint32, start, length uint) uint32 {
	mask := uint32(1)<<length - 1
	return (word >> start) & mask
}

// SignExtend reinterprets the low n bits of value as a signed integer and
// extends its sign through the remaining high bits of a 32-bit result. n
// must be between 1 and 32 inclusive.
func SignExtend(value uint32, n uint) int32 {
	shift := 32 - n
	return int32(value<<shift) >> shift
}
