package link

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

// flipPayloadBit invierte el bit k del payload de una trama Hamming.
func flipPayloadBit(f []byte, k int) {
	off := frame.HeaderSize + frame.SubHeaderSize
	f[off+k/8] ^= 1 << (7 - k%8)
}

func mustEncode(t *testing.T, text string, alg Algorithm) []byte {
	t.Helper()
	f, err := EncodeMessage(text, alg)
	require.NoError(t, err)
	return f
}

func TestProcess_CRCSuccess(t *testing.T) {
	res := NewInterpreter(nil).Process(mustEncode(t, "Hola", AlgorithmCRC))

	assert.True(t, res.Success)
	assert.True(t, res.CRCValid)
	assert.Equal(t, AlgorithmCRC, res.Algorithm)
	assert.Equal(t, "Hola", res.Message)
	assert.Equal(t, byte(0x01), res.MsgType)
	assert.Empty(t, res.ErrorKind)
	assert.NoError(t, res.Err)
	assert.Equal(t, 11, res.FrameSize)
	assert.Equal(t, 88, res.TotalBits)
	assert.GreaterOrEqual(t, int64(res.ProcessingTime), int64(0))
}

func TestProcess_CRCDetectsError(t *testing.T) {
	f := mustEncode(t, "Hola", AlgorithmCRC)
	f[4] ^= 0x10

	res := NewInterpreter(nil).Process(f)

	assert.False(t, res.Success)
	assert.False(t, res.CRCValid)
	assert.Equal(t, AlgorithmCRC, res.Algorithm)
	assert.Empty(t, res.Message)
	assert.ErrorIs(t, res.Err, frame.ErrCRCMismatch)
	assert.Equal(t, "crc_mismatch", res.ErrorKind)
	assert.Equal(t, "CRC validation failed", res.Cause)
}

func TestProcess_CRCTypeByteCorrupted(t *testing.T) {
	f := mustEncode(t, "Hola", AlgorithmCRC)
	f[0] = 0x00

	res := NewInterpreter(nil).Process(f)

	assert.False(t, res.Success)
	assert.Equal(t, AlgorithmCRC, res.Algorithm)
	assert.Equal(t, "crc_mismatch", res.ErrorKind)
}

func TestProcess_CRCValidWithNonCanonicalType(t *testing.T) {
	f, err := frame.BuildFrame([]byte("Hola"), 0x04, nil)
	require.NoError(t, err)

	res := NewInterpreter(nil).Process(f)

	assert.False(t, res.Success)
	assert.True(t, res.CRCValid)
	assert.ErrorIs(t, res.Err, ErrUnknownAlgorithm)
	assert.Equal(t, "unknown_algorithm", res.ErrorKind)
}

func TestProcess_HammingClean(t *testing.T) {
	res := NewInterpreter(nil).Process(mustEncode(t, "Hola mundo", AlgorithmHamming))

	assert.True(t, res.Success)
	assert.True(t, res.CRCValid)
	assert.Equal(t, AlgorithmHamming, res.Algorithm)
	assert.Equal(t, "Hola mundo", res.Message)
	assert.NotNil(t, res.CorrectedPositions)
	assert.Zero(t, res.Corrections())
}

func TestProcess_HammingCorrectsOneErrorPerBlock(t *testing.T) {
	f := mustEncode(t, "Hola", AlgorithmHamming) // 32 bits → 8 bloques
	var want []int
	for block := 0; block < 8; block++ {
		k := block*7 + block%7
		flipPayloadBit(f, k)
		want = append(want, k)
	}

	res := NewInterpreter(nil).Process(f)

	require.True(t, res.Success, res.Cause)
	assert.True(t, res.CRCValid)
	assert.Equal(t, "Hola", res.Message)
	assert.Equal(t, want, res.CorrectedPositions)
	assert.Equal(t, 8, res.Corrections())
}

func TestProcess_HammingTwoErrorsInBlock(t *testing.T) {
	f := mustEncode(t, "Hola", AlgorithmHamming)
	flipPayloadBit(f, 0)
	flipPayloadBit(f, 6)

	res := NewInterpreter(nil).Process(f)

	assert.False(t, res.Success)
	assert.False(t, res.CRCValid)
	assert.ErrorIs(t, res.Err, ErrHammingUncorrectable)
	assert.Equal(t, "hamming_uncorrectable", res.ErrorKind)
	assert.Equal(t, "CRC invalid after Hamming correction", res.Cause)
	assert.Empty(t, res.Message)
}

func TestProcess_HammingCorruptedTypeByte(t *testing.T) {
	for _, msgType := range []byte{0x03, 0x06, 0x07, 0x09, 0xF2} {
		t.Run(fmt.Sprintf("0x%02x", msgType), func(t *testing.T) {
			f := mustEncode(t, "Hi", AlgorithmHamming)
			f[0] = msgType
			flipPayloadBit(f, 3)

			res := NewInterpreter(nil).Process(f)

			require.True(t, res.Success, res.Cause)
			assert.Equal(t, AlgorithmHamming, res.Algorithm)
			assert.Equal(t, msgType, res.MsgType)
			assert.Equal(t, "Hi", res.Message)
			assert.Equal(t, []int{3}, res.CorrectedPositions)
		})
	}
}

func TestProcess_HammingEmptyPayload(t *testing.T) {
	f, err := frame.BuildFrameWithHamming(nil)
	require.NoError(t, err)

	res := NewInterpreter(nil).Process(f)

	assert.True(t, res.Success)
	assert.Empty(t, res.Message)
}

func TestProcess_HammingTrailingPadding(t *testing.T) {
	// 8 bits → 14 bits → 2 bytes; el último bloque parcial se descarta
	for _, text := range []string{"A", "AB", "ABC", "Hola mundo!", "0123456789"} {
		res := NewInterpreter(nil).Process(mustEncode(t, text, AlgorithmHamming))
		assert.True(t, res.Success, text)
		assert.Equal(t, text, res.Message)
	}
}

func TestProcess_CRCPayloadLengthMismatch(t *testing.T) {
	// header dice 5 bytes, llegan 4, CRC calculado sobre lo enviado
	f := append([]byte{frame.MsgTypeCRC, 0x00, 0x05}, "Hola"...)
	f = binary.BigEndian.AppendUint32(f, frame.Checksum(f))

	res := NewInterpreter(nil).Process(f)

	assert.False(t, res.Success)
	assert.True(t, res.CRCValid)
	assert.Equal(t, AlgorithmCRC, res.Algorithm)
	assert.Empty(t, res.Message)
	assert.ErrorIs(t, res.Err, frame.ErrPayloadLengthMismatch)
	assert.Equal(t, "payload_length_mismatch", res.ErrorKind)
	assert.Equal(t, "Payload length mismatch", res.Cause)
}

func TestProcess_HammingSubHeaderExceedsPayload(t *testing.T) {
	encoded, err := frame.Hamming74Encode(presentation.TextToBits("Hola"))
	require.NoError(t, err)
	payload := presentation.BitsToBytes(encoded)

	tests := []struct {
		name string
		lens frame.HammingLengths
	}{
		{"original bits", frame.HammingLengths{OriginalBits: 500, EncodedBits: len(encoded)}},
		{"encoded bits", frame.HammingLengths{OriginalBits: 32, EncodedBits: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := frame.BuildFrame(payload, frame.MsgTypeHamming, &tt.lens)
			require.NoError(t, err)

			res := NewInterpreter(nil).Process(f)

			assert.False(t, res.Success)
			assert.True(t, res.CRCValid)
			assert.Equal(t, AlgorithmHamming, res.Algorithm)
			assert.ErrorIs(t, res.Err, frame.ErrPayloadLengthMismatch)
			assert.Equal(t, "payload_length_mismatch", res.ErrorKind)
			assert.Equal(t, "Payload length mismatch", res.Cause)
		})
	}
}

func TestProcess_HammingHeaderLengthCorrupted(t *testing.T) {
	for _, flip := range []struct {
		idx  int
		mask byte
	}{{1, 0x80}, {2, 0x01}, {2, 0x04}} {
		f := mustEncode(t, "Hola", AlgorithmHamming)
		f[flip.idx] ^= flip.mask

		res := NewInterpreter(nil).Process(f)

		assert.True(t, res.Success, "byte %d mask %02x", flip.idx, flip.mask)
		assert.True(t, res.CRCValid)
		assert.Equal(t, "Hola", res.Message)
		assert.Empty(t, res.CorrectedPositions)
	}
}

func TestProcess_TooShort(t *testing.T) {
	for _, b := range [][]byte{nil, {0x01}, {0x01, 0x00, 0x00, 0x00, 0x00, 0x00}} {
		res := NewInterpreter(nil).Process(b)

		assert.False(t, res.Success)
		assert.Equal(t, AlgorithmUnknown, res.Algorithm)
		assert.ErrorIs(t, res.Err, frame.ErrFrameTooShort)
		assert.Equal(t, "frame_too_short", res.ErrorKind)
		assert.Equal(t, "Frame too short", res.Cause)
	}
}

func TestProcess_HammingTooShortForSubHeader(t *testing.T) {
	res := NewInterpreter(nil).Process([]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})

	assert.False(t, res.Success)
	assert.Equal(t, AlgorithmHamming, res.Algorithm)
	assert.Equal(t, "frame_too_short", res.ErrorKind)
}

func TestProcess_NeverPanics(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	in := NewInterpreter(nil)

	for i := 0; i < 2000; i++ {
		b := make([]byte, rng.Intn(64))
		rng.Read(b)

		var res Result
		require.NotPanics(t, func() { res = in.Process(b) })
		if !res.Success {
			assert.Error(t, res.Err)
			assert.NotEmpty(t, res.ErrorKind)
			assert.NotEmpty(t, res.Cause)
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: x", ErrHammingUncorrectable), "hamming_uncorrectable"},
		{fmt.Errorf("%w: %w", ErrHammingUncorrectable, frame.ErrCRCMismatch), "hamming_uncorrectable"},
		{ErrUnknownAlgorithm, "unknown_algorithm"},
		{frame.ErrFrameTooShort, "frame_too_short"},
		{frame.ErrCRCMismatch, "crc_mismatch"},
		{frame.ErrHammingLength, "hamming_length_invalid"},
		{frame.ErrPayloadLengthMismatch, "payload_length_mismatch"},
		{errors.New("boom"), "unexpected"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err))
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmCRC, AlgorithmHamming} {
		f := mustEncode(t, "linklab", alg)

		res := DecodeFrame(f)
		assert.True(t, res.Success, alg)
		assert.Equal(t, "linklab", res.Message)
		assert.Equal(t, alg, res.Algorithm)
	}

	_, err := EncodeMessage("x", AlgorithmUnknown)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestInjectNoise(t *testing.T) {
	f := mustEncode(t, "Hola", AlgorithmCRC)

	clean, pos, err := InjectNoise(f, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, f, clean)
	assert.Empty(t, pos)

	a, posA, err := InjectNoise(f, 0.05, 99)
	require.NoError(t, err)
	b, posB, err := InjectNoise(f, 0.05, 99)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, posA, posB)

	stats, err := compareFrames(f, a)
	require.NoError(t, err)
	assert.Equal(t, len(posA), stats)
}

func compareFrames(a, b []byte) (int, error) {
	ba, bb := presentation.BytesToBits(a), presentation.BytesToBits(b)
	if len(ba) != len(bb) {
		return 0, errors.New("length differs")
	}
	n := 0
	for i := range ba {
		if ba[i] != bb[i] {
			n++
		}
	}
	return n, nil
}
