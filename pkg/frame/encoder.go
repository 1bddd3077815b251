package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

const (
	MsgTypeCRC     byte = 0x01 // RAW + CRC-32
	MsgTypeHamming byte = 0x02 // HAMMING(7,4) + CRC-32

	HeaderSize    = 3 // msg_type + payload_length
	SubHeaderSize = 4 // original_bits_len + encoded_bits_len
	TrailerSize   = 4 // CRC-32

	MinFrameSize        = HeaderSize + TrailerSize
	MinHammingFrameSize = HeaderSize + SubHeaderSize + TrailerSize

	MaxPayloadSize = 0xFFFF
)

// HammingLengths es el sub-header de una trama Hamming.
type HammingLengths struct {
	OriginalBits int // bits antes de codificar
	EncodedBits  int // bits después de codificar, sin padding a byte
}

// BuildFrame arma la trama completa:
// [tipo(1)] [longitud(2)] [sub-header(4), sólo Hamming] [payload] [CRC-32(4)].
// Para MsgTypeHamming lens es obligatorio.
func BuildFrame(payload []byte, msgType byte, lens *HammingLengths) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}

	size := HeaderSize + len(payload) + TrailerSize
	if msgType == MsgTypeHamming {
		if lens == nil {
			return nil, ErrMissingHammingLengths
		}
		if lens.OriginalBits < 0 || lens.OriginalBits > 0xFFFF || lens.EncodedBits < 0 || lens.EncodedBits > 0xFFFF {
			return nil, fmt.Errorf("%w: bit lengths %d/%d do not fit the sub-header",
				ErrPayloadTooLarge, lens.OriginalBits, lens.EncodedBits)
		}
		size += SubHeaderSize
	}

	out := make([]byte, 0, size)
	out = append(out, msgType)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)))
	if msgType == MsgTypeHamming {
		out = binary.BigEndian.AppendUint16(out, uint16(lens.OriginalBits))
		out = binary.BigEndian.AppendUint16(out, uint16(lens.EncodedBits))
	}
	out = append(out, payload...)
	out = binary.BigEndian.AppendUint32(out, Checksum(out))

	return out, nil
}

// BuildCRCFrame empaqueta los bits del mensaje y arma una trama 0x01.
func BuildCRCFrame(dataBits []byte) ([]byte, error) {
	return BuildFrame(presentation.BitsToBytes(dataBits), MsgTypeCRC, nil)
}

// BuildFrameWithHamming codifica los bits del mensaje con Hamming(7,4) y
// arma una trama 0x02 con el sub-header de longitudes.
func BuildFrameWithHamming(dataBits []byte) ([]byte, error) {
	encoded, err := Hamming74Encode(dataBits)
	if err != nil {
		return nil, err
	}
	lens := &HammingLengths{OriginalBits: len(dataBits), EncodedBits: len(encoded)}
	return BuildFrame(presentation.BitsToBytes(encoded), MsgTypeHamming, lens)
}
