// Package emitter implementa el emisor por capas: aplicación, presentación,
// enlace, ruido y transmisión.
package emitter

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/application"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/log"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/noise"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/wsclient"
)

// Transport entrega una trama al receptor. reply es nil cuando no se
// espera respuesta.
type Transport interface {
	Transmit(ctx context.Context, frame []byte) (reply *wsclient.Reply, err error)
}

// Emitter implementa la arquitectura de capas completa
type Emitter struct {
	presentation *presentation.PresentationLayer
	noise        *noise.NoiseLayer
	transport    Transport
	out          io.Writer
	log          logrus.FieldLogger
	quiet        bool
}

// Option configura un Emitter.
type Option func(*Emitter)

// WithOutput cambia el destino de los mensajes para el usuario.
func WithOutput(w io.Writer) Option {
	return func(e *Emitter) { e.out = w }
}

// WithLogger asigna el logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Emitter) { e.log = l }
}

// WithSeed fija la semilla del canal ruidoso. 0 usa una semilla por tiempo.
func WithSeed(seed int64) Option {
	return func(e *Emitter) {
		if seed != 0 {
			e.noise = noise.NewNoiseLayerWithSeed(seed)
		}
	}
}

// New crea un emisor que transmite por t.
func New(t Transport, opts ...Option) *Emitter {
	e := &Emitter{
		presentation: presentation.NewPresentationLayer(),
		noise:        noise.NewNoiseLayer(),
		transport:    t,
		out:          os.Stdout,
		log:          log.Discard(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// TransmissionResult contiene el resultado de una transmisión
type TransmissionResult struct {
	Config            *application.MessageConfig
	Algorithm         link.Algorithm
	OriginalMessage   string
	TextBits          []byte
	FrameBytes        []byte
	NoisyFrameBytes   []byte
	OriginalFrameBits []byte
	NoisyFrameBits    []byte
	ErrorPositions    []int
	ErrorsInjected    int
	ActualBER         float64
	Success           bool
	Error             string
	Reply             *wsclient.Reply
	StartTime         time.Time
	EndTime           time.Time
	TotalTime         time.Duration
	TransmissionTime  time.Duration
}

// Recovered indica si el receptor confirmó haber recuperado el mensaje.
func (r *TransmissionResult) Recovered() bool {
	return r.Reply != nil && r.Reply.Success
}

func (e *Emitter) printf(format string, args ...any) {
	if !e.quiet {
		fmt.Fprintf(e.out, format, args...)
	}
}

// ProcessMessage procesa un mensaje a través de todas las capas
func (e *Emitter) ProcessMessage(ctx context.Context, config *application.MessageConfig) (*TransmissionResult, error) {
	alg, err := link.ParseAlgorithm(config.Algorithm)
	if err != nil {
		return nil, err
	}

	result := &TransmissionResult{
		Config:          config,
		Algorithm:       alg,
		OriginalMessage: config.Text,
		StartTime:       time.Now(),
	}

	e.printf("🚀 Iniciando transmisión de: \"%s\"\n", config.Text)
	e.printf("   Algoritmo: %s, BER: %.3f\n\n", alg, config.BER)

	// CAPA 2: PRESENTACIÓN - ASCII → bits
	e.printf("📝 Capa de Presentación - Codificando mensaje...\n")
	textBits, err := e.presentation.CodificarMensaje(config.Text)
	if err != nil {
		return nil, fmt.Errorf("error en presentación: %w", err)
	}
	result.TextBits = textBits
	e.printf("   Texto → %d bits\n", len(textBits))

	// CAPA 3: ENLACE - CRC-32 o Hamming(7,4) + CRC-32
	e.printf("🔗 Capa de Enlace - Aplicando algoritmo...\n")
	frameBytes, err := link.EncodeMessage(config.Text, alg)
	if err != nil {
		return nil, fmt.Errorf("error construyendo frame %s: %w", alg, err)
	}
	result.FrameBytes = frameBytes
	e.printf("   %s aplicado, frame de %d bytes\n", describe(alg), len(frameBytes))

	// CAPA 4: RUIDO
	e.printf("📡 Capa de Ruido - Simulando canal ruidoso...\n")
	frameBits := presentation.BytesToBits(frameBytes)
	noiseResult, err := e.noise.Apply(frameBits, config.BER)
	if err != nil {
		return nil, fmt.Errorf("error aplicando ruido: %w", err)
	}
	result.OriginalFrameBits = noiseResult.OriginalBits
	result.NoisyFrameBits = noiseResult.NoisyBits
	result.ErrorPositions = noiseResult.ErrorPositions
	result.ErrorsInjected = noiseResult.ErrorsInjected
	result.ActualBER = noiseResult.ActualBER
	result.NoisyFrameBytes = presentation.BitsToBytes(noiseResult.NoisyBits)
	e.printf("   %d errores inyectados en %d bits (BER real: %.4f)\n",
		noiseResult.ErrorsInjected, len(frameBits), noiseResult.ActualBER)

	// CAPA 5: TRANSMISIÓN
	e.printf("🌐 Capa de Transmisión - Enviando por WebSocket...\n")
	transmissionStart := time.Now()
	reply, err := e.transport.Transmit(ctx, result.NoisyFrameBytes)
	result.TransmissionTime = time.Since(transmissionStart)

	logger := e.log.WithFields(logrus.Fields{
		"algorithm": alg,
		"errors":    result.ErrorsInjected,
		"size":      len(frameBytes),
	})
	if err != nil {
		result.Error = err.Error()
		e.printf("   ❌ Error de transmisión: %v\n", err)
		logger.WithError(err).Warn("transmission failed")
	} else {
		result.Success = true
		result.Reply = reply
		e.printf("   ✅ Transmisión exitosa (%v)\n", result.TransmissionTime)
		if reply != nil {
			e.printf("   📨 Receptor: success=%t, correcciones=%d, mensaje=%q\n",
				reply.Success, reply.Corrections, reply.Message)
		}
		logger.Debug("frame transmitted")
	}

	result.EndTime = time.Now()
	result.TotalTime = result.EndTime.Sub(result.StartTime)
	return result, nil
}

func describe(alg link.Algorithm) string {
	if alg == link.AlgorithmHamming {
		return "Hamming(7,4) + CRC-32"
	}
	return "CRC-32"
}

// BenchmarkResult contiene resultados de múltiples transmisiones
type BenchmarkResult struct {
	Config                  *application.MessageConfig
	Results                 []*TransmissionResult
	StartTime               time.Time
	EndTime                 time.Time
	TotalTime               time.Duration
	Successful              int
	Failed                  int
	Recovered               int
	SuccessRate             float64
	RecoveryRate            float64
	AverageTransmissionTime time.Duration
}

// Estadisticas resume el benchmark para la capa de aplicación.
func (b *BenchmarkResult) Estadisticas() application.Estadisticas {
	return application.Estadisticas{
		Total:       len(b.Results),
		Exitosos:    b.Successful,
		Fallidos:    b.Failed,
		TasaExito:   b.SuccessRate,
		TiempoMedio: b.AverageTransmissionTime,
	}
}

// RunBenchmark ejecuta config.Count transmisiones con un solo algoritmo.
// Se detiene si ctx se cancela.
func (e *Emitter) RunBenchmark(ctx context.Context, config *application.MessageConfig) (*BenchmarkResult, error) {
	if config.Count <= 0 {
		return nil, fmt.Errorf("cantidad de iteraciones inválida: %d", config.Count)
	}

	e.printf("🎯 Iniciando benchmark: %d iteraciones\n", config.Count)
	e.printf("   Mensaje: \"%s\"\n", config.Text)
	e.printf("   Algoritmo: %s, BER: %.3f\n\n", config.Algorithm, config.BER)

	benchmark := &BenchmarkResult{
		Config:    config,
		StartTime: time.Now(),
		Results:   make([]*TransmissionResult, 0, config.Count),
	}

	// el detalle por capa sólo se muestra en modo manual
	quiet := e.quiet
	e.quiet = true
	defer func() { e.quiet = quiet }()

	var totalTransmissionTime time.Duration
	for i := 0; i < config.Count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i%100 == 0 && i > 0 {
			fmt.Fprintf(e.out, "   Progreso: %d/%d (%.1f%%)\n", i, config.Count, float64(i)/float64(config.Count)*100)
		}

		result, err := e.ProcessMessage(ctx, config)
		switch {
		case err != nil:
			benchmark.Failed++
			now := time.Now()
			result = &TransmissionResult{Config: config, Error: err.Error(), StartTime: now, EndTime: now}
		case result.Success:
			benchmark.Successful++
			totalTransmissionTime += result.TransmissionTime
			if result.Recovered() {
				benchmark.Recovered++
			}
		default:
			benchmark.Failed++
		}
		benchmark.Results = append(benchmark.Results, result)
	}

	benchmark.EndTime = time.Now()
	benchmark.TotalTime = benchmark.EndTime.Sub(benchmark.StartTime)
	benchmark.SuccessRate = float64(benchmark.Successful) / float64(config.Count)
	benchmark.RecoveryRate = float64(benchmark.Recovered) / float64(config.Count)
	if benchmark.Successful > 0 {
		benchmark.AverageTransmissionTime = totalTransmissionTime / time.Duration(benchmark.Successful)
	}

	fmt.Fprintf(e.out, "\n📊 Resumen del Benchmark:\n")
	fmt.Fprintf(e.out, "   Total: %d transmisiones\n", config.Count)
	fmt.Fprintf(e.out, "   Exitosas: %d (%.1f%%)\n", benchmark.Successful, benchmark.SuccessRate*100)
	fmt.Fprintf(e.out, "   Fallidas: %d (%.1f%%)\n", benchmark.Failed, float64(benchmark.Failed)/float64(config.Count)*100)
	fmt.Fprintf(e.out, "   Recuperadas por el receptor: %d (%.1f%%)\n", benchmark.Recovered, benchmark.RecoveryRate*100)
	fmt.Fprintf(e.out, "   Tiempo total: %v\n", benchmark.TotalTime)
	fmt.Fprintf(e.out, "   Tiempo promedio por transmisión: %v\n\n", benchmark.AverageTransmissionTime)

	return benchmark, nil
}

// MostrarResultadoDetallado imprime el resultado de una transmisión manual.
func (e *Emitter) MostrarResultadoDetallado(result *TransmissionResult) {
	fmt.Fprintln(e.out, "📋 Resultado Detallado:")
	fmt.Fprintln(e.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(e.out, "Mensaje original: \"%s\"\n", result.OriginalMessage)
	fmt.Fprintf(e.out, "Bits de texto: %d\n", len(result.TextBits))
	fmt.Fprintf(e.out, "Tamaño de frame: %d bytes\n", len(result.FrameBytes))
	fmt.Fprintf(e.out, "Errores inyectados: %d\n", result.ErrorsInjected)
	if len(result.ErrorPositions) > 0 {
		fmt.Fprintf(e.out, "Posiciones con error: %v\n", result.ErrorPositions)
	}
	fmt.Fprintf(e.out, "BER real: %.4f\n", result.ActualBER)
	fmt.Fprintf(e.out, "Tiempo total: %v\n", result.TotalTime)
	fmt.Fprintf(e.out, "Tiempo transmisión: %v\n", result.TransmissionTime)

	if result.Success {
		fmt.Fprintln(e.out, "✅ Estado: EXITOSA")
	} else {
		fmt.Fprintf(e.out, "❌ Estado: FALLIDA - %s\n", result.Error)
	}
	if r := result.Reply; r != nil {
		if r.Success {
			fmt.Fprintf(e.out, "📨 Receptor recuperó: \"%s\" (%d correcciones)\n", r.Message, r.Corrections)
		} else {
			fmt.Fprintf(e.out, "📨 Receptor descartó la trama: %s\n", r.Message)
		}
	}
	fmt.Fprintln(e.out)
}

// AnalizarBenchmark imprime estadísticas sobre los errores inyectados.
func (e *Emitter) AnalizarBenchmark(benchmark *BenchmarkResult) {
	fmt.Fprintln(e.out, "📊 Análisis del Benchmark:")
	fmt.Fprintln(e.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(e.out, "Configuración: %s, BER=%.3f, %d iteraciones\n",
		benchmark.Config.Algorithm, benchmark.Config.BER, benchmark.Config.Count)
	fmt.Fprintf(e.out, "Tasa de éxito: %.2f%% (%d/%d)\n",
		benchmark.SuccessRate*100, benchmark.Successful, benchmark.Config.Count)
	fmt.Fprintf(e.out, "Tiempo total: %v (promedio: %v por transmisión)\n",
		benchmark.TotalTime, benchmark.AverageTransmissionTime)

	var totalErrors int
	var totalBER float64
	for _, r := range benchmark.Results {
		if r.Success {
			totalErrors += r.ErrorsInjected
			totalBER += r.ActualBER
		}
	}
	if benchmark.Successful > 0 {
		fmt.Fprintf(e.out, "Errores promedio por transmisión: %.1f\n", float64(totalErrors)/float64(benchmark.Successful))
		fmt.Fprintf(e.out, "BER promedio: %.4f (objetivo: %.4f)\n", totalBER/float64(benchmark.Successful), benchmark.Config.BER)
	}
	fmt.Fprintln(e.out)
}
