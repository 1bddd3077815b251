package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

func TestParseFrame_DetectsEverySingleBitFlip(t *testing.T) {
	f, err := BuildCRCFrame(presentation.TextToBits("Hola mundo"))
	require.NoError(t, err)

	for i := 0; i < len(f)*8; i++ {
		noisy := append([]byte(nil), f...)
		noisy[i/8] ^= 1 << (7 - i%8)

		_, err := ParseFrame(noisy)
		assert.ErrorIs(t, err, ErrCRCMismatch, "bit %d", i)
	}
}

func TestParseFrame_TooShort(t *testing.T) {
	for _, b := range [][]byte{nil, {0x01}, {0x01, 0x00, 0x00, 0x00, 0x00, 0x00}} {
		_, err := ParseFrame(b)
		assert.ErrorIs(t, err, ErrFrameTooShort)
	}
}

func TestParseFrame_HammingTooShortForSubHeader(t *testing.T) {
	f, err := BuildFrame([]byte{0xAB}, MsgTypeCRC, nil)
	require.NoError(t, err)

	// mismo largo pero con tipo Hamming y CRC recalculado
	f[0] = MsgTypeHamming
	f = append(f[:len(f)-TrailerSize:len(f)-TrailerSize], 0, 0, 0, 0)
	sum := Checksum(f[:len(f)-TrailerSize])
	f[len(f)-4], f[len(f)-3], f[len(f)-2], f[len(f)-1] = byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum)

	_, err = ParseFrame(f)
	assert.ErrorIs(t, err, ErrFrameTooShort)
}

func TestParseFrame_LengthMismatch(t *testing.T) {
	f, err := BuildFrame([]byte("abc"), MsgTypeCRC, nil)
	require.NoError(t, err)

	// longitud declarada 5, payload real 3, CRC consistente
	body := append([]byte(nil), f[:len(f)-TrailerSize]...)
	body[2] = 5
	sum := Checksum(body)
	forged := append(body, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))

	_, err = ParseFrame(forged)
	assert.ErrorIs(t, err, ErrPayloadLengthMismatch)
}

func TestSplitFrame(t *testing.T) {
	f, err := BuildFrame([]byte{0x11, 0x22}, MsgTypeHamming, &HammingLengths{OriginalBits: 4, EncodedBits: 7})
	require.NoError(t, err)
	f[7] ^= 0xFF // el CRC no se revisa

	raw, err := SplitFrame(f, true)
	require.NoError(t, err)
	assert.Equal(t, MsgTypeHamming, raw.MsgType)
	assert.Equal(t, 2, raw.PayloadLength)
	assert.Equal(t, &HammingLengths{OriginalBits: 4, EncodedBits: 7}, raw.Lens)
	assert.Equal(t, []byte{0xEE, 0x22}, raw.Payload)
	assert.Equal(t, Checksum(append([]byte{0x02, 0x00, 0x02, 0x00, 0x04, 0x00, 0x07}, 0x11, 0x22)), raw.CRC)

	raw, err = SplitFrame(f, false)
	require.NoError(t, err)
	assert.Nil(t, raw.Lens)
	assert.Len(t, raw.Payload, 6)

	_, err = SplitFrame(f[:10], true)
	assert.ErrorIs(t, err, ErrFrameTooShort)
}
