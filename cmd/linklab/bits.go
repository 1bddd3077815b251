package main

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// parseBits convierte una cadena como "1101 0110" en bits individuales.
func parseBits(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	bits := make([]byte, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			bits = append(bits, 0)
		case '1':
			bits = append(bits, 1)
		default:
			return nil, fmt.Errorf("carácter inválido '%c' en posición %d", r, i)
		}
	}
	return bits, nil
}

func formatBits(bits []byte) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		sb.WriteByte('0' + b)
	}
	return sb.String()
}

// parseHex acepta espacios y un prefijo 0x opcional.
func parseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("hex inválido: %w", err)
	}
	return b, nil
}
