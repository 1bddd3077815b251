package noise

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

var (
	ErrInvalidBER = errors.New("noise: BER must be between 0.0 and 1.0")
	ErrInvalidBit = errors.New("noise: bit value must be 0 or 1")
)

// NoiseLayer maneja la inyección de errores en la transmisión. No es segura
// para uso concurrente: cada goroutine debe tener su propia instancia.
type NoiseLayer struct {
	rng *rand.Rand
}

// NewNoiseLayer crea una nueva instancia con semilla aleatoria
func NewNoiseLayer() *NoiseLayer {
	return NewNoiseLayerWithSeed(ObtenerSemilla())
}

// NewNoiseLayerWithSeed crea una instancia con semilla específica (para tests reproducibles)
func NewNoiseLayerWithSeed(seed int64) *NoiseLayer {
	return &NoiseLayer{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// ErrorResult contiene información sobre los errores inyectados
type ErrorResult struct {
	OriginalBits   []byte  // Bits originales
	NoisyBits      []byte  // Bits con ruido aplicado
	ErrorPositions []int   // Posiciones donde se inyectaron errores
	TotalBits      int     // Total de bits procesados
	ErrorsInjected int     // Cantidad de errores inyectados
	ActualBER      float64 // BER real obtenido
}

// Apply inyecta errores de bit con la probabilidad BER especificada: cada
// bit sufre un ensayo de Bernoulli independiente.
func (n *NoiseLayer) Apply(bits []byte, ber float64) (*ErrorResult, error) {
	if err := validate(bits, ber); err != nil {
		return nil, err
	}

	noisyBits := make([]byte, len(bits))
	copy(noisyBits, bits)

	errorPositions := []int{}
	for i := range noisyBits {
		if n.rng.Float64() < ber {
			noisyBits[i] ^= 1
			errorPositions = append(errorPositions, i)
		}
	}

	var actualBER float64
	if len(bits) > 0 {
		actualBER = float64(len(errorPositions)) / float64(len(bits))
	}

	return &ErrorResult{
		OriginalBits:   bits,
		NoisyBits:      noisyBits,
		ErrorPositions: errorPositions,
		TotalBits:      len(bits),
		ErrorsInjected: len(errorPositions),
		ActualBER:      actualBER,
	}, nil
}

// Inject aplica ruido con una semilla fija: la misma semilla da siempre
// el mismo resultado.
func Inject(bits []byte, ber float64, seed int64) ([]byte, []int, error) {
	res, err := NewNoiseLayerWithSeed(seed).Apply(bits, ber)
	if err != nil {
		return nil, nil, err
	}
	return res.NoisyBits, res.ErrorPositions, nil
}

// InjectBytes es Inject sobre una trama en bytes. Las posiciones son
// índices de bit dentro de la trama.
func InjectBytes(data []byte, ber float64, seed int64) ([]byte, []int, error) {
	noisy, positions, err := Inject(presentation.BytesToBits(data), ber, seed)
	if err != nil {
		return nil, nil, err
	}
	return presentation.BitsToBytes(noisy), positions, nil
}

// ValidarConfiguracion valida los parámetros de ruido
func (n *NoiseLayer) ValidarConfiguracion(ber float64, bits []byte) error {
	if len(bits) == 0 {
		return fmt.Errorf("no hay bits para procesar")
	}
	return validate(bits, ber)
}

func validate(bits []byte, ber float64) error {
	if ber < 0.0 || ber > 1.0 || math.IsNaN(ber) {
		return fmt.Errorf("%w: got %.3f", ErrInvalidBER, ber)
	}
	for i, bit := range bits {
		if bit != 0 && bit != 1 {
			return fmt.Errorf("%w: position %d has %d", ErrInvalidBit, i, bit)
		}
	}
	return nil
}

// BitErrorStats compara lo transmitido contra lo recibido
type BitErrorStats struct {
	TotalBits   int
	ErrorBits   int
	CorrectBits int
	ErrorRate   float64
}

// CompareBits cuenta los bits que difieren entre dos secuencias del mismo largo.
func CompareBits(original, received []byte) (BitErrorStats, error) {
	if len(original) != len(received) {
		return BitErrorStats{}, fmt.Errorf("bit sequences differ in length: %d vs %d", len(original), len(received))
	}

	stats := BitErrorStats{TotalBits: len(original)}
	for i := range original {
		if original[i] != received[i] {
			stats.ErrorBits++
		}
	}
	stats.CorrectBits = stats.TotalBits - stats.ErrorBits
	if stats.TotalBits > 0 {
		stats.ErrorRate = float64(stats.ErrorBits) / float64(stats.TotalBits)
	}

	return stats, nil
}

// ChannelStats contiene estadísticas del canal ruidoso
type ChannelStats struct {
	TargetBER                    float64
	AverageBER                   float64
	BERVariance                  float64
	BERStdDev                    float64
	Iterations                   int
	TotalBits                    int
	TotalErrors                  int
	AverageErrorsPerTransmission float64
	MaxErrors                    int
	MinErrors                    int
	ErrorDistribution            map[int]int // cantidad_errores -> frecuencia
}

// Simulate repite Apply sobre los mismos bits para estimar el
// comportamiento del canal.
func (n *NoiseLayer) Simulate(bits []byte, ber float64, iteraciones int) (*ChannelStats, error) {
	if iteraciones <= 0 {
		return nil, fmt.Errorf("iteraciones debe ser mayor a 0: %d", iteraciones)
	}

	stats := &ChannelStats{
		TargetBER:         ber,
		Iterations:        iteraciones,
		TotalBits:         len(bits) * iteraciones,
		ErrorDistribution: make(map[int]int),
	}

	berValues := make([]float64, 0, iteraciones)
	for i := 0; i < iteraciones; i++ {
		result, err := n.Apply(bits, ber)
		if err != nil {
			return nil, fmt.Errorf("error en iteración %d: %w", i, err)
		}

		stats.TotalErrors += result.ErrorsInjected
		berValues = append(berValues, result.ActualBER)
		stats.ErrorDistribution[result.ErrorsInjected]++

		if i == 0 || result.ErrorsInjected > stats.MaxErrors {
			stats.MaxErrors = result.ErrorsInjected
		}
		if i == 0 || result.ErrorsInjected < stats.MinErrors {
			stats.MinErrors = result.ErrorsInjected
		}
	}

	if stats.TotalBits > 0 {
		stats.AverageBER = float64(stats.TotalErrors) / float64(stats.TotalBits)
	}
	stats.AverageErrorsPerTransmission = float64(stats.TotalErrors) / float64(iteraciones)

	var variance float64
	for _, v := range berValues {
		diff := v - stats.AverageBER
		variance += diff * diff
	}
	stats.BERVariance = variance / float64(len(berValues))
	stats.BERStdDev = math.Sqrt(stats.BERVariance)

	return stats, nil
}

// ErrorCount es una entrada de la distribución de errores
type ErrorCount struct {
	Errors int
	Count  int
}

// TopErrors devuelve las limit entradas más frecuentes de la distribución.
func (stats *ChannelStats) TopErrors(limit int) []ErrorCount {
	distribution := make([]ErrorCount, 0, len(stats.ErrorDistribution))
	for errs, count := range stats.ErrorDistribution {
		distribution = append(distribution, ErrorCount{Errors: errs, Count: count})
	}
	sort.Slice(distribution, func(i, j int) bool {
		if distribution[i].Count != distribution[j].Count {
			return distribution[i].Count > distribution[j].Count
		}
		return distribution[i].Errors < distribution[j].Errors
	})
	if limit > 0 && len(distribution) > limit {
		distribution = distribution[:limit]
	}
	return distribution
}

// ObtenerSemilla devuelve una nueva semilla basada en el tiempo actual
func ObtenerSemilla() int64 {
	return time.Now().UnixNano()
}

// EstimarImpacto estima los errores esperados para cada BER
func EstimarImpacto(longitud int, berValues []float64) map[float64]float64 {
	estimaciones := make(map[float64]float64, len(berValues))
	for _, ber := range berValues {
		estimaciones[ber] = float64(longitud) * ber
	}
	return estimaciones
}
