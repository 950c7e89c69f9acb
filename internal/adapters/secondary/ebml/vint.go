package ebml

import (
	"bytes"
	"math/bits"
)

// vint is a decoded EBML variable-length integer
type vint struct {
	value  uint64
	length int
}

// readVint decodes the size VINT at off. The length marker bit is masked out.
func readVint(buf []byte, off int) (vint, bool) {
	return readLeading(buf, off, 8, true)
}

// readElementID decodes the element ID at off. IDs keep their marker bit so
// they compare directly against known element IDs.
func readElementID(buf []byte, off int) (vint, bool) {
	return readLeading(buf, off, 4, false)
}

func readLeading(buf []byte, off, maxLength int, mask bool) (vint, bool) {
	if off < 0 || off >= len(buf) {
		return vint{}, false
	}
	first := buf[off]
	if first == 0 {
		return vint{}, false
	}
	length := bits.LeadingZeros8(first) + 1
	if length > maxLength || length > len(buf)-off {
		return vint{}, false
	}

	value := uint64(first)
	if mask {
		marker := byte(0x80) >> (length - 1)
		value = uint64(first & (marker - 1))
	}
	for i := 1; i < length; i++ {
		value = value<<8 | uint64(buf[off+i])
	}
	return vint{value: value, length: length}, true
}

// isUnknownSize reports whether the size VINT at off has every payload bit set
func isUnknownSize(buf []byte, off, length int) bool {
	if length < 1 || length > 8 || off < 0 || length > len(buf)-off {
		return false
	}
	marker := byte(0x80) >> (length - 1)
	payload := marker - 1
	if buf[off]&payload != payload {
		return false
	}
	for i := 1; i < length; i++ {
		if buf[off+i] != 0xFF {
			return false
		}
	}
	return true
}

// readUint reads an n-byte big-endian unsigned integer
func readUint(buf []byte, off, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<8 | uint64(buf[off+i])
	}
	return v
}

// writeUint writes the low n bytes of v big-endian, truncating wider values
func writeUint(buf []byte, off, n int, v uint64) {
	for i := n - 1; i >= 0; i-- {
		buf[off+i] = byte(v)
		v >>= 8
	}
}

// indexOf returns the offset of the first occurrence of pattern in
// buf[from:to], or -1
func indexOf(buf, pattern []byte, from, to int) int {
	if to > len(buf) {
		to = len(buf)
	}
	if from < 0 {
		from = 0
	}
	if from >= to {
		return -1
	}
	i := bytes.Index(buf[from:to], pattern)
	if i < 0 {
		return -1
	}
	return from + i
}
