package frame

import "hash/crc32"

// Checksum calcula el CRC-32 (polinomio IEEE 802.3) de data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
