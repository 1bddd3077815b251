package link

import (
	"fmt"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/noise"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

var defaultInterpreter = NewInterpreter(nil)

// EncodeMessage convierte el texto a bits y arma la trama del algoritmo pedido.
func EncodeMessage(text string, alg Algorithm) ([]byte, error) {
	bits := presentation.TextToBits(text)
	switch alg {
	case AlgorithmCRC:
		return frame.BuildCRCFrame(bits)
	case AlgorithmHamming:
		return frame.BuildFrameWithHamming(bits)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// DecodeFrame procesa una trama con un intérprete sin logs.
func DecodeFrame(b []byte) Result {
	return defaultInterpreter.Process(b)
}

// InjectNoise pasa la trama por el canal ruidoso con una semilla fija.
func InjectNoise(b []byte, ber float64, seed int64) ([]byte, []int, error) {
	return noise.InjectBytes(b, ber, seed)
}
