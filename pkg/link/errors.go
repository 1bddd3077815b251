package link

import (
	"errors"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
)

var (
	ErrHammingUncorrectable = errors.New("link: CRC invalid after Hamming correction")
	ErrUnknownAlgorithm     = errors.New("link: unknown algorithm classification")
	ErrUnsupportedAlgorithm = errors.New("link: unsupported algorithm")
	ErrUnexpected           = errors.New("link: unexpected failure")
)

// Kind devuelve un nombre estable para el tipo de error, útil para
// telemetría y para el CSV del benchmark.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrHammingUncorrectable):
		return "hamming_uncorrectable"
	case errors.Is(err, ErrUnknownAlgorithm):
		return "unknown_algorithm"
	case errors.Is(err, frame.ErrFrameTooShort):
		return "frame_too_short"
	case errors.Is(err, frame.ErrCRCMismatch):
		return "crc_mismatch"
	case errors.Is(err, frame.ErrHammingLength):
		return "hamming_length_invalid"
	case errors.Is(err, frame.ErrPayloadLengthMismatch):
		return "payload_length_mismatch"
	default:
		return "unexpected"
	}
}
