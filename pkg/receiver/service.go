// Package receiver implementa el lado receptor del enlace: pasa cada trama
// entrante por el intérprete y lleva estadísticas acumuladas.
package receiver

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/log"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/metrics"
)

// DefaultRecentLimit es la cantidad de resultados que guarda /recent.
const DefaultRecentLimit = 100

// Stats contiene los contadores del receptor.
type Stats struct {
	Total               int           `json:"total_received"`
	Successful          int           `json:"successful"`
	Failed              int           `json:"failed"`
	CRCValid            int           `json:"crc_valid"`
	CRCInvalid          int           `json:"crc_invalid"`
	HammingCorrected    int           `json:"hamming_corrected"`
	HammingFailed       int           `json:"hamming_failed"`
	TotalProcessingTime time.Duration `json:"total_processing_time"`
}

// Snapshot es una copia de Stats con las tasas derivadas.
type Snapshot struct {
	Stats
	SuccessRate           float64       `json:"success_rate"`
	CRCSuccessRate        float64       `json:"crc_success_rate"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
}

// Service procesa tramas y agrega resultados. Es seguro para uso concurrente.
type Service struct {
	interp  *link.Interpreter
	metrics *metrics.Metrics
	log     logrus.FieldLogger

	mu     sync.Mutex
	stats  Stats
	recent []link.Result
	next   int
	limit  int
}

// Option configura un Service.
type Option func(*Service)

// WithLogger asigna el logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics asigna los colectores de Prometheus.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRecentLimit fija el tamaño del anillo de resultados recientes.
func WithRecentLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// NewService crea un Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		log:   log.Discard(),
		limit: DefaultRecentLimit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	s.interp = link.NewInterpreter(s.log)
	s.recent = make([]link.Result, 0, s.limit)
	return s
}

// Metrics devuelve los colectores del servicio.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// Handle interpreta una trama y registra el resultado.
func (s *Service) Handle(b []byte) link.Result {
	res := s.interp.Process(b)
	s.record(res)
	s.observe(res)
	return res
}

func (s *Service) record(res link.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Total++
	s.stats.TotalProcessingTime += res.ProcessingTime
	if res.Success {
		s.stats.Successful++
	} else {
		s.stats.Failed++
	}
	crcFailed := errors.Is(res.Err, frame.ErrCRCMismatch)
	switch {
	case res.CRCValid:
		s.stats.CRCValid++
	case crcFailed:
		s.stats.CRCInvalid++
	}
	if res.Algorithm == link.AlgorithmHamming {
		if res.CRCValid && res.Corrections() > 0 {
			s.stats.HammingCorrected++
		}
		// un CRC inválido tras corregir ya cuenta en CRCInvalid
		if !res.Success && !crcFailed {
			s.stats.HammingFailed++
		}
	}

	if len(s.recent) < s.limit {
		s.recent = append(s.recent, res)
	} else {
		s.recent[s.next] = res
	}
	s.next = (s.next + 1) % s.limit
}

func (s *Service) observe(res link.Result) {
	outcome := "success"
	if !res.Success {
		outcome = "failure"
	}
	s.metrics.FramesTotal.WithLabelValues(string(res.Algorithm), outcome, res.ErrorKind).Inc()
	switch {
	case res.CRCValid:
		s.metrics.CRCChecksTotal.WithLabelValues("valid").Inc()
	case errors.Is(res.Err, frame.ErrCRCMismatch):
		s.metrics.CRCChecksTotal.WithLabelValues("invalid").Inc()
	}
	s.metrics.CorrectedBitsTotal.Add(float64(res.Corrections()))
	s.metrics.ProcessingSeconds.WithLabelValues(string(res.Algorithm)).Observe(res.ProcessingTime.Seconds())
}

// Stats devuelve una copia de los contadores.
func (s *Service) Stats() Snapshot {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()

	snap := Snapshot{Stats: st}
	if st.Total > 0 {
		snap.SuccessRate = float64(st.Successful) / float64(st.Total)
		snap.CRCSuccessRate = float64(st.CRCValid) / float64(st.Total)
		snap.AverageProcessingTime = st.TotalProcessingTime / time.Duration(st.Total)
	}
	return snap
}

// Recent devuelve hasta limit resultados, el más nuevo primero. Con
// limit <= 0 devuelve todos.
func (s *Service) Recent(limit int) []link.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.recent)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]link.Result, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + s.limit) % s.limit
		out = append(out, s.recent[idx])
	}
	return out
}

// Reset limpia contadores y resultados recientes. Los contadores de
// Prometheus son monótonos y no se reinician.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
	s.recent = s.recent[:0]
	s.next = 0
}
