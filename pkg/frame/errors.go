package frame

import "errors"

var (
	ErrFrameTooShort         = errors.New("frame: frame too short")
	ErrCRCMismatch           = errors.New("frame: CRC-32 mismatch")
	ErrPayloadLengthMismatch = errors.New("frame: payload length mismatch")
	ErrPayloadTooLarge       = errors.New("frame: payload too large")
	ErrMissingHammingLengths = errors.New("frame: hamming frame requires original and encoded bit lengths")
	ErrHammingLength         = errors.New("frame: hamming input length is not a multiple of 7")
	ErrInvalidBit            = errors.New("frame: bit value must be 0 or 1")
)
