package frame

import "fmt"

const (
	hammingDataBits  = 4
	hammingBlockBits = 7
)

// syndromePos traduce el síndrome (1..7) al índice dentro del bloque
// [p2, p1, d3, p0, d2, d1, d0].
var syndromePos = [8]int{
	0: -1,
	1: 3, // p0
	2: 1, // p1
	3: 2, // d3
	4: 0, // p2
	5: 4, // d2
	6: 5, // d1
	7: 6, // d0
}

// Hamming74Encode aplica el código Hamming (7,4) a un slice de bits (0 o 1).
// Si la longitud no es múltiplo de 4, hace padding con ceros.
// Devuelve un slice de bits codificados en bloques de 7 bits.
func Hamming74Encode(dataBits []byte) ([]byte, error) {
	if err := checkBits(dataBits); err != nil {
		return nil, err
	}

	numBlocks := (len(dataBits) + hammingDataBits - 1) / hammingDataBits

	padded := make([]byte, numBlocks*hammingDataBits)
	copy(padded, dataBits)

	result := make([]byte, 0, numBlocks*hammingBlockBits)
	for i := 0; i < numBlocks; i++ {
		d := padded[i*hammingDataBits : (i+1)*hammingDataBits]
		result = append(result, encodeBlock(d[0], d[1], d[2], d[3])...)
	}

	return result, nil
}

func encodeBlock(d3, d2, d1, d0 byte) []byte {
	p0 := d3 ^ d2 ^ d0
	p1 := d3 ^ d1 ^ d0
	p2 := d2 ^ d1 ^ d0

	// Bloque: [p2 p1 d3 p0 d2 d1 d0]
	return []byte{p2, p1, d3, p0, d2, d1, d0}
}

// Hamming74Decode decodifica bloques de 7 bits corrigiendo como máximo un
// bit por bloque. Devuelve los bits de datos y las posiciones absolutas
// corregidas. Con dos o más errores en un mismo bloque el síndrome apunta a
// un bit equivocado y el decodificador no puede notarlo.
func Hamming74Decode(encodedBits []byte) ([]byte, []int, error) {
	if len(encodedBits)%hammingBlockBits != 0 {
		return nil, nil, fmt.Errorf("%w: got %d bits", ErrHammingLength, len(encodedBits))
	}
	if err := checkBits(encodedBits); err != nil {
		return nil, nil, err
	}

	numBlocks := len(encodedBits) / hammingBlockBits
	data := make([]byte, 0, numBlocks*hammingDataBits)
	var corrected []int

	block := make([]byte, hammingBlockBits)
	for i := 0; i < numBlocks; i++ {
		start := i * hammingBlockBits
		copy(block, encodedBits[start:start+hammingBlockBits])

		if pos := syndromePos[syndrome(block)]; pos >= 0 {
			block[pos] ^= 1
			corrected = append(corrected, start+pos)
		}

		data = append(data, block[2], block[4], block[5], block[6])
	}

	return data, corrected, nil
}

func syndrome(block []byte) int {
	p2, p1, d3, p0, d2, d1, d0 := block[0], block[1], block[2], block[3], block[4], block[5], block[6]

	s0 := p0 ^ d3 ^ d2 ^ d0
	s1 := p1 ^ d3 ^ d1 ^ d0
	s2 := p2 ^ d2 ^ d1 ^ d0

	return int(s2)*4 + int(s1)*2 + int(s0)
}

func checkBits(bits []byte) error {
	for i, b := range bits {
		if b != 0 && b != 1 {
			return fmt.Errorf("%w: position %d has %d", ErrInvalidBit, i, b)
		}
	}
	return nil
}
