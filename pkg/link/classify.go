package link

import (
	"fmt"
	"strings"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
)

// Algorithm identifica la disciplina de control de errores de una trama.
type Algorithm string

const (
	AlgorithmCRC     Algorithm = "crc"
	AlgorithmHamming Algorithm = "hamming"
	AlgorithmUnknown Algorithm = "unknown"
)

// ParseAlgorithm acepta "crc" / "hamming" y sus alias numéricos del menú.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crc", "1", "crc32", "crc-32":
		return AlgorithmCRC, nil
	case "hamming", "2", "hamming74":
		return AlgorithmHamming, nil
	default:
		return AlgorithmUnknown, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}

// MsgType devuelve el byte de tipo canónico del algoritmo.
func (a Algorithm) MsgType() (byte, bool) {
	switch a {
	case AlgorithmCRC:
		return frame.MsgTypeCRC, true
	case AlgorithmHamming:
		return frame.MsgTypeHamming, true
	default:
		return 0, false
	}
}

// Classification es la decisión tomada sobre el byte de tipo recibido.
type Classification struct {
	Algorithm Algorithm
	Exact     bool // el byte coincide con un tipo conocido
}

// El byte de tipo llega antes del CRC que lo protege, así que con ruido
// puede venir alterado. Los valores a un bit de 0x01 o 0x02 que no chocan
// con el otro tipo se asignan al más cercano; el resto cae en Hamming, que
// tolera más errores. La tabla es empírica, no sale de una distancia de
// código.
var classification = map[byte]Algorithm{
	frame.MsgTypeCRC:     AlgorithmCRC,
	frame.MsgTypeHamming: AlgorithmHamming,

	0x00: AlgorithmCRC,
	0x04: AlgorithmCRC,
	0x05: AlgorithmCRC,

	0x03: AlgorithmHamming,
	0x06: AlgorithmHamming,
	0x07: AlgorithmHamming,
}

const defaultAlgorithm = AlgorithmHamming

// Classify decide qué camino de recepción sigue una trama según su primer
// byte. Es total: todo valor produce un algoritmo.
func Classify(msgType byte) Classification {
	alg, ok := classification[msgType]
	if !ok {
		alg = defaultAlgorithm
	}
	return Classification{
		Algorithm: alg,
		Exact:     msgType == frame.MsgTypeCRC || msgType == frame.MsgTypeHamming,
	}
}
