// Package bench corre benchmarks de transmisión sin red: mensajes
// aleatorios se enmarcan, pasan por el canal ruidoso y los recibe el
// intérprete, todo en el mismo proceso.
package bench

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/config"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/log"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/noise"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 !@#$%^&*()_+-=[]{}|;:,.<>?"

// Combination es una celda (algoritmo, longitud, BER) de la grilla.
type Combination struct {
	Algorithm link.Algorithm
	Length    int
	BER       float64
	Weight    int
	Tests     int
}

// weight da más muestras a los canales limpios o con poco ruido.
func weight(ber float64) int {
	switch {
	case ber == 0:
		return 3
	case ber <= 0.001:
		return 2
	default:
		return 1
	}
}

// Plan reparte total pruebas entre las combinaciones según su peso. Cada
// combinación recibe al menos una.
func Plan(total int, algorithms []link.Algorithm, lengths []int, bers []float64) []Combination {
	var combos []Combination
	totalWeight := 0
	for _, alg := range algorithms {
		for _, l := range lengths {
			for _, ber := range bers {
				w := weight(ber)
				combos = append(combos, Combination{Algorithm: alg, Length: l, BER: ber, Weight: w})
				totalWeight += w
			}
		}
	}
	for i := range combos {
		combos[i].Tests = max(1, total*combos[i].Weight/totalWeight)
	}
	return combos
}

// Record es el resultado de una prueba.
type Record struct {
	TestID               int
	Algorithm            link.Algorithm
	MessageLength        int
	OriginalBits         int
	TotalBits            int
	OverheadBits         int
	OverheadRatio        float64
	TargetBER            float64
	ErrorsInjected       int
	ActualBER            float64
	ErrorsCorrected      int
	Successful           bool
	RecoveredCorrectly   bool
	CRCDetectedCorrectly bool
	TotalTime            time.Duration
	ReceptionTime        time.Duration
	Message              string
	Recovered            string
	ErrorKind            string
}

// Runner ejecuta el plan en un pool acotado de workers.
type Runner struct {
	cfg        config.BenchConfig
	algorithms []link.Algorithm
	interp     *link.Interpreter
	log        logrus.FieldLogger
}

// NewRunner valida los nombres de algoritmo y crea el runner.
func NewRunner(cfg config.BenchConfig, logger logrus.FieldLogger) (*Runner, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	algs := make([]link.Algorithm, 0, len(cfg.Algorithms))
	for _, s := range cfg.Algorithms {
		alg, err := link.ParseAlgorithm(s)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return &Runner{
		cfg:        cfg,
		algorithms: algs,
		// sin logs de recepción
		interp: link.NewInterpreter(nil),
		log:    logger,
	}, nil
}

// Plan devuelve las combinaciones que se van a ejecutar.
func (r *Runner) Plan() []Combination {
	return Plan(r.cfg.Tests, r.algorithms, r.cfg.Lengths, r.cfg.BER)
}

// Run ejecuta todas las pruebas y devuelve los registros ordenados por
// TestID. Con la misma semilla el resultado no depende de la cantidad de
// workers.
func (r *Runner) Run(ctx context.Context) ([]Record, error) {
	combos := r.Plan()

	p := pool.NewWithResults[Record]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(r.cfg.Workers)

	testID := 0
	for _, c := range combos {
		r.log.WithFields(logrus.Fields{
			"algorithm": c.Algorithm,
			"length":    c.Length,
			"ber":       c.BER,
			"tests":     c.Tests,
		}).Debug("scheduling combination")

		for j := 0; j < c.Tests; j++ {
			id, c := testID, c
			p.Go(func(ctx context.Context) (Record, error) {
				if err := ctx.Err(); err != nil {
					return Record{}, err
				}
				return r.RunSingle(id, c.Algorithm, c.Length, c.BER)
			})
			testID++
		}
	}

	records, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].TestID < records[j].TestID })

	r.log.WithField("tests", len(records)).Info("benchmark completed")
	return records, nil
}

// Message genera el mensaje aleatorio de una prueba.
func (r *Runner) Message(testID, length int) string {
	rng := rand.New(rand.NewSource(r.cfg.Seed + int64(testID)))
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}

// RunSingle enmarca un mensaje aleatorio, le inyecta ruido y lo recibe.
func (r *Runner) RunSingle(testID int, alg link.Algorithm, length int, ber float64) (Record, error) {
	start := time.Now()
	msg := r.Message(testID, length)

	frame, err := link.EncodeMessage(msg, alg)
	if err != nil {
		return Record{}, fmt.Errorf("test %d: %w", testID, err)
	}

	rec := Record{
		TestID:        testID,
		Algorithm:     alg,
		MessageLength: length,
		OriginalBits:  len(msg) * 8,
		TotalBits:     len(frame) * 8,
		TargetBER:     ber,
		Message:       msg,
	}
	rec.OverheadBits = rec.TotalBits - rec.OriginalBits
	if rec.OriginalBits > 0 {
		rec.OverheadRatio = float64(rec.OverheadBits) / float64(rec.OriginalBits)
	}

	// semilla distinta a la del mensaje para no correlacionar ruido y texto
	noisy, _, err := link.InjectNoise(frame, ber, r.cfg.Seed+int64(testID)+1<<32)
	if err != nil {
		return Record{}, fmt.Errorf("test %d: %w", testID, err)
	}
	stats, err := noise.CompareBits(presentation.BytesToBits(frame), presentation.BytesToBits(noisy))
	if err != nil {
		return Record{}, fmt.Errorf("test %d: %w", testID, err)
	}
	rec.ErrorsInjected = stats.ErrorBits
	rec.ActualBER = stats.ErrorRate

	rxStart := time.Now()
	res := r.interp.Process(noisy)
	rec.ReceptionTime = time.Since(rxStart)

	rec.Successful = res.Success
	rec.Recovered = res.Message
	rec.ErrorsCorrected = res.Corrections()
	rec.ErrorKind = res.ErrorKind
	rec.RecoveredCorrectly = res.Success && res.Message == msg
	if alg == link.AlgorithmCRC {
		rec.CRCDetectedCorrectly = (rec.ErrorsInjected > 0) != res.Success
	}
	rec.TotalTime = time.Since(start)

	return rec, nil
}
