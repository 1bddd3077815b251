package presentation

const (
	printableMin = 32
	printableMax = 126
	replacement  = '?'
)

// TextToBits convierte cada byte del texto en 8 bits, MSB primero.
func TextToBits(text string) []byte {
	return BytesToBits([]byte(text))
}

// BitsToText agrupa los bits en bytes (con padding de ceros a múltiplo de 8)
// y mapea cada byte a un carácter. Los bytes fuera de [32,126] se
// reemplazan por '?', así basura en el canal sigue dando un texto de largo
// fijo e imprimible.
func BitsToText(bits []byte) string {
	data := BitsToBytes(bits)
	out := make([]byte, len(data))
	for i, c := range data {
		if c < printableMin || c > printableMax {
			c = replacement
		}
		out[i] = c
	}
	return string(out)
}

// BitsToTextN trunca a originalLen bits antes de agrupar, deshaciendo el
// padding agregado aguas arriba. Con originalLen fuera de rango se comporta
// como BitsToText.
func BitsToTextN(bits []byte, originalLen int) string {
	if originalLen >= 0 && originalLen < len(bits) {
		bits = bits[:originalLen]
	}
	return BitsToText(bits)
}

// BytesToBits expande cada byte en 8 bits, big-endian.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

// BitsToBytes empaqueta bits en bytes, con padding de ceros a la derecha.
// No modifica la entrada.
func BitsToBytes(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		out[i/8] |= (bit & 1) << (7 - i%8)
	}
	return out
}
