package frame

import (
	"encoding/binary"
	"fmt"
)

// Frame es una trama ya validada.
type Frame struct {
	MsgType byte
	Payload []byte
	Lens    *HammingLengths // sólo para MsgTypeHamming
}

// RawFrame es la extracción posicional de una trama, sin validar el CRC.
type RawFrame struct {
	MsgType       byte
	PayloadLength int
	Lens          *HammingLengths
	Payload       []byte
	CRC           uint32
}

// ParseFrame valida el CRC-32 y extrae los campos. Falla cerrado: ante
// cualquier error devuelve un Frame vacío.
func ParseFrame(b []byte) (Frame, error) {
	if len(b) < MinFrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes (min %d)", ErrFrameTooShort, len(b), MinFrameSize)
	}

	data := b[:len(b)-TrailerSize]
	received := binary.BigEndian.Uint32(b[len(b)-TrailerSize:])
	if calculated := Checksum(data); calculated != received {
		return Frame{}, fmt.Errorf("%w: received %08x, calculated %08x", ErrCRCMismatch, received, calculated)
	}

	f := Frame{MsgType: data[0]}
	length := int(binary.BigEndian.Uint16(data[1:HeaderSize]))
	offset := HeaderSize

	if f.MsgType == MsgTypeHamming {
		if len(b) < MinHammingFrameSize {
			return Frame{}, fmt.Errorf("%w: %d bytes (min %d for hamming)", ErrFrameTooShort, len(b), MinHammingFrameSize)
		}
		f.Lens = readLens(data[HeaderSize : HeaderSize+SubHeaderSize])
		offset += SubHeaderSize
	}

	f.Payload = data[offset:]
	if len(f.Payload) != length {
		return Frame{}, fmt.Errorf("%w: header says %d, got %d", ErrPayloadLengthMismatch, length, len(f.Payload))
	}

	return f, nil
}

// SplitFrame separa header, sub-header, payload y CRC por posición, sin
// mirar el CRC. withSubHeader indica si se debe asumir el sub-header Hamming
// aunque el byte de tipo diga otra cosa.
func SplitFrame(b []byte, withSubHeader bool) (RawFrame, error) {
	minSize := MinFrameSize
	if withSubHeader {
		minSize = MinHammingFrameSize
	}
	if len(b) < minSize {
		return RawFrame{}, fmt.Errorf("%w: %d bytes (min %d)", ErrFrameTooShort, len(b), minSize)
	}

	r := RawFrame{
		MsgType:       b[0],
		PayloadLength: int(binary.BigEndian.Uint16(b[1:HeaderSize])),
		CRC:           binary.BigEndian.Uint32(b[len(b)-TrailerSize:]),
	}
	offset := HeaderSize
	if withSubHeader {
		r.Lens = readLens(b[HeaderSize : HeaderSize+SubHeaderSize])
		offset += SubHeaderSize
	}
	r.Payload = b[offset : len(b)-TrailerSize]

	return r, nil
}

func readLens(sub []byte) *HammingLengths {
	return &HammingLengths{
		OriginalBits: int(binary.BigEndian.Uint16(sub[0:2])),
		EncodedBits:  int(binary.BigEndian.Uint16(sub[2:4])),
	}
}
