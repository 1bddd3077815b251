package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBits(t *testing.T) {
	bits, err := parseBits("1101 0\t11")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 0, 1, 0, 1, 1}, bits)
	assert.Equal(t, "1101011", formatBits(bits))

	bits, err = parseBits("")
	require.NoError(t, err)
	assert.Empty(t, bits)

	_, err = parseBits("10a1")
	assert.ErrorContains(t, err, "carácter inválido 'a' en posición 2")
}

func TestParseHex(t *testing.T) {
	b, err := parseHex("0x01 00 01\n48")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x01, 0x48}, b)

	_, err = parseHex("abc")
	assert.Error(t, err)
	_, err = parseHex("zz")
	assert.Error(t, err)
}
