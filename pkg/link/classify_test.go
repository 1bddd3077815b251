package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msgType byte
		want    Algorithm
		exact   bool
	}{
		{0x01, AlgorithmCRC, true},
		{0x02, AlgorithmHamming, true},
		{0x00, AlgorithmCRC, false},
		{0x04, AlgorithmCRC, false},
		{0x05, AlgorithmCRC, false},
		{0x03, AlgorithmHamming, false},
		{0x06, AlgorithmHamming, false},
		{0x07, AlgorithmHamming, false},
		{0x08, AlgorithmHamming, false},
		{0x81, AlgorithmHamming, false},
		{0xFF, AlgorithmHamming, false},
	}

	for _, tt := range tests {
		got := Classify(tt.msgType)
		assert.Equal(t, tt.want, got.Algorithm, "0x%02x", tt.msgType)
		assert.Equal(t, tt.exact, got.Exact, "0x%02x", tt.msgType)
	}
}

func TestClassify_Total(t *testing.T) {
	for b := 0; b < 256; b++ {
		alg := Classify(byte(b)).Algorithm
		assert.Contains(t, []Algorithm{AlgorithmCRC, AlgorithmHamming}, alg, "0x%02x", b)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for _, s := range []string{"crc", "CRC", "1", "crc32", " crc-32 "} {
		alg, err := ParseAlgorithm(s)
		require.NoError(t, err, s)
		assert.Equal(t, AlgorithmCRC, alg)
	}
	for _, s := range []string{"hamming", "2", "Hamming74"} {
		alg, err := ParseAlgorithm(s)
		require.NoError(t, err, s)
		assert.Equal(t, AlgorithmHamming, alg)
	}

	alg, err := ParseAlgorithm("parity")
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	assert.Equal(t, AlgorithmUnknown, alg)
}

func TestAlgorithm_MsgType(t *testing.T) {
	b, ok := AlgorithmCRC.MsgType()
	assert.True(t, ok)
	assert.Equal(t, byte(0x01), b)

	b, ok = AlgorithmHamming.MsgType()
	assert.True(t, ok)
	assert.Equal(t, byte(0x02), b)

	_, ok = AlgorithmUnknown.MsgType()
	assert.False(t, ok)
}
