package bitutil

import "errors"

// ErrNotEnoughBits is returned when a read asks for more bits than remain.
var ErrNotEnoughBits = errors.New("bitsource: not enough bits")

// BitSource reads big-endian bit fields of arbitrary width from a byte
// sequence.
type BitSource struct {
	bytes  []byte
	offset int // in bits
}

// NewBitSource creates a BitSource positioned at the first bit of bytes.
func NewBitSource(bytes []byte) *BitSource {
	return &BitSource{bytes: bytes}
}

// ByteOffset returns the index of the byte holding the next bit.
func (bs *BitSource) ByteOffset() int {
	return bs.offset / 8
}

// BitOffset returns the position of the next bit within its byte.
func (bs *BitSource) BitOffset() int {
	return bs.offset % 8
}

// ReadBits reads numBits (1-32) bits, first bit most significant.
func (bs *BitSource) ReadBits(numBits int) (int, error) {
	if numBits < 1 || numBits > 32 || numBits > bs.Available() {
		return 0, ErrNotEnoughBits
	}
	result := 0
	for numBits > 0 {
		b := int(bs.bytes[bs.offset/8])
		used := bs.offset % 8
		take := 8 - used
		if take > numBits {
			take = numBits
		}
		chunk := (b >> uint(8-used-take)) & (1<<uint(take) - 1)
		result = result<<uint(take) | chunk
		bs.offset += take
		numBits -= take
	}
	return result, nil
}

// Available returns the number of unread bits.
func (bs *BitSource) Available() int {
	return 8*len(bs.bytes) - bs.offset
}
