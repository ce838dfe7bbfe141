package qrcodec

import "errors"

var (
	// ErrNotFound is returned when no symbol can be located in the image.
	ErrNotFound = errors.New("symbol not found")

	// ErrFormatInfoUnreadable is returned when neither copy of the format
	// information (or of the version information) decodes within the BCH
	// correction distance.
	ErrFormatInfoUnreadable = errors.New("format information unreadable")

	// ErrUncorrectableBlock is returned when a codeword block holds more
	// errors than its error correction codewords can repair.
	ErrUncorrectableBlock = errors.New("uncorrectable block")

	// ErrMalformedBitstream is returned when the corrected data codewords do
	// not parse as a segment sequence.
	ErrMalformedBitstream = errors.New("malformed bitstream")

	// ErrCapacityExceeded is returned when a message does not fit the data
	// capacity of the requested version and error correction level.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrMessageTooLong is returned when no allowed version can hold a message.
	ErrMessageTooLong = errors.New("message too long")

	// ErrInvalidArgument is returned for malformed caller input.
	ErrInvalidArgument = errors.New("invalid argument")
)
