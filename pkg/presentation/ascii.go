package presentation

import (
	"fmt"
	"unicode/utf8"
)

// MaxTextLength es el límite impuesto por el campo de longitud de 2 bytes.
const MaxTextLength = 65535

// PresentationLayer maneja la codificación/decodificación de mensajes del
// lado del emisor, donde el texto se valida antes de salir al canal.
type PresentationLayer struct{}

// NewPresentationLayer crea una nueva instancia
func NewPresentationLayer() *PresentationLayer {
	return &PresentationLayer{}
}

// CodificarMensaje valida el texto y lo convierte a bits
func (p *PresentationLayer) CodificarMensaje(texto string) ([]byte, error) {
	if err := p.ValidarTexto(texto); err != nil {
		return nil, err
	}

	for i, r := range texto {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return nil, fmt.Errorf("carácter de control no permitido en posición %d: código %d", i, r)
		}
	}

	return TextToBits(texto), nil
}

// DecodificarMensaje convierte bits a texto ASCII. A diferencia de
// BitsToText, rechaza cualquier entrada que no sea ASCII válido.
func (p *PresentationLayer) DecodificarMensaje(bits []byte) (string, error) {
	if len(bits)%8 != 0 {
		return "", fmt.Errorf("la longitud de bits (%d) no es múltiplo de 8", len(bits))
	}

	for i, bit := range bits {
		if bit != 0 && bit != 1 {
			return "", fmt.Errorf("bit inválido en posición %d: %d (debe ser 0 o 1)", i, bit)
		}
	}

	data := BitsToBytes(bits)
	for _, c := range data {
		if c > 127 {
			return "", fmt.Errorf("código de carácter inválido: %d (mayor que 127)", c)
		}
		if c < 32 && c != '\t' && c != '\n' && c != '\r' {
			return "", fmt.Errorf("carácter de control no permitido: código %d", c)
		}
	}

	return string(data), nil
}

// TextStats resume la composición de un mensaje
type TextStats struct {
	Characters int
	Bytes      int
	Bits       int
	Letters    int
	Digits     int
	Spaces     int
	Special    int
}

// ObtenerEstadisticas devuelve información sobre la codificación
func (p *PresentationLayer) ObtenerEstadisticas(texto string) TextStats {
	stats := TextStats{
		Characters: utf8.RuneCountInString(texto),
		Bytes:      len(texto),
		Bits:       len(texto) * 8,
	}

	for _, char := range texto {
		switch {
		case char >= 'a' && char <= 'z' || char >= 'A' && char <= 'Z':
			stats.Letters++
		case char >= '0' && char <= '9':
			stats.Digits++
		case char == ' ' || char == '\t' || char == '\n' || char == '\r':
			stats.Spaces++
		default:
			stats.Special++
		}
	}

	return stats
}

// ValidarTexto verifica que el texto sea válido para transmisión
func (p *PresentationLayer) ValidarTexto(texto string) error {
	if texto == "" {
		return fmt.Errorf("el texto no puede estar vacío")
	}

	if len(texto) > MaxTextLength {
		return fmt.Errorf("el texto es demasiado largo: %d caracteres (máximo %d)", len(texto), MaxTextLength)
	}

	if !utf8.ValidString(texto) {
		return fmt.Errorf("el texto contiene caracteres no válidos UTF-8")
	}

	for i, r := range texto {
		if r > 127 {
			return fmt.Errorf("carácter no-ASCII en posición %d: '%c'", i, r)
		}
	}

	return nil
}
