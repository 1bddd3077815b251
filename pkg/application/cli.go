package application

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

// AlgorithmBoth pide correr el benchmark con ambos algoritmos.
const AlgorithmBoth = "both"

// MessageConfig contiene la configuración del mensaje a enviar
type MessageConfig struct {
	Text      string  // Mensaje de texto a enviar
	Algorithm string  // "crc" o "hamming"
	BER       float64 // Bit Error Rate (0.0 to 1.0)
	Mode      string  // "manual" o "benchmark"
	Count     int     // Número de iteraciones para benchmark
}

// ApplicationLayer maneja la interacción con el usuario
type ApplicationLayer struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewApplicationLayer crea una instancia que lee de stdin y escribe en stdout
func NewApplicationLayer() *ApplicationLayer {
	return NewApplicationLayerWithIO(os.Stdin, os.Stdout)
}

// NewApplicationLayerWithIO crea una instancia con entrada y salida propias
func NewApplicationLayerWithIO(in io.Reader, out io.Writer) *ApplicationLayer {
	return &ApplicationLayer{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// Algorithms devuelve los algoritmos a ejecutar para la configuración
func (c *MessageConfig) Algorithms() []link.Algorithm {
	if c.Algorithm == AlgorithmBoth {
		return []link.Algorithm{link.AlgorithmCRC, link.AlgorithmHamming}
	}
	alg, err := link.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return nil
	}
	return []link.Algorithm{alg}
}

// SolicitarMensaje solicita entrada del usuario según el modo
func (app *ApplicationLayer) SolicitarMensaje(mode string) (*MessageConfig, error) {
	switch mode {
	case "manual":
		return app.solicitarMensajeManual()
	case "benchmark":
		return app.solicitarMensajeBenchmark()
	default:
		return nil, fmt.Errorf("modo inválido: %s (usar 'manual' o 'benchmark')", mode)
	}
}

// solicitarMensajeManual solicita configuración manual del usuario
func (app *ApplicationLayer) solicitarMensajeManual() (*MessageConfig, error) {
	config := &MessageConfig{Mode: "manual", Count: 1}

	// Solicitar mensaje
	fmt.Fprint(app.out, "Ingrese el mensaje a transmitir: ")
	if !app.scanner.Scan() {
		return nil, fmt.Errorf("error leyendo mensaje")
	}
	config.Text = strings.TrimSpace(app.scanner.Text())
	if config.Text == "" {
		return nil, fmt.Errorf("el mensaje no puede estar vacío")
	}

	// Solicitar algoritmo
	for {
		fmt.Fprint(app.out, "Seleccione algoritmo (1=CRC-32, 2=Hamming(7,4)): ")
		if !app.scanner.Scan() {
			return nil, fmt.Errorf("error leyendo algoritmo")
		}

		choice := strings.TrimSpace(app.scanner.Text())
		switch choice {
		case "1", "crc":
			config.Algorithm = "crc"
		case "2", "hamming":
			config.Algorithm = "hamming"
		default:
			fmt.Fprintln(app.out, "❌ Opción inválida. Ingrese 1 para CRC-32 o 2 para Hamming(7,4)")
			continue
		}
		break
	}

	// Solicitar BER
	for {
		fmt.Fprint(app.out, "Ingrese BER (0.0-0.1, ej: 0.01): ")
		if !app.scanner.Scan() {
			return nil, fmt.Errorf("error leyendo BER")
		}

		berStr := strings.TrimSpace(app.scanner.Text())
		ber, err := strconv.ParseFloat(berStr, 64)
		if err != nil {
			fmt.Fprintln(app.out, "❌ BER inválido. Ingrese un número decimal (ej: 0.01)")
			continue
		}
		if ber < 0.0 || ber > 1.0 {
			fmt.Fprintln(app.out, "❌ BER debe estar entre 0.0 y 1.0")
			continue
		}
		config.BER = ber
		break
	}

	return config, nil
}

// solicitarMensajeBenchmark solicita configuración para pruebas automatizadas
func (app *ApplicationLayer) solicitarMensajeBenchmark() (*MessageConfig, error) {
	config := &MessageConfig{Mode: "benchmark"}

	// Solicitar configuración de benchmark
	fmt.Fprint(app.out, "Mensaje base para benchmark [Hello World]: ")
	if !app.scanner.Scan() {
		return nil, fmt.Errorf("error leyendo mensaje")
	}
	config.Text = strings.TrimSpace(app.scanner.Text())
	if config.Text == "" {
		config.Text = "Hello World" // Valor por defecto
	}

	// Algoritmo para benchmark
	for {
		fmt.Fprint(app.out, "Algoritmo para benchmark (1=CRC-32, 2=Hamming(7,4), 3=Ambos): ")
		if !app.scanner.Scan() {
			return nil, fmt.Errorf("error leyendo algoritmo")
		}

		choice := strings.TrimSpace(app.scanner.Text())
		switch choice {
		case "1":
			config.Algorithm = "crc"
		case "2":
			config.Algorithm = "hamming"
		case "3":
			config.Algorithm = AlgorithmBoth
		default:
			fmt.Fprintln(app.out, "❌ Opción inválida")
			continue
		}
		break
	}

	// BER para benchmark
	for {
		fmt.Fprint(app.out, "BER para benchmark [0.01]: ")
		if !app.scanner.Scan() {
			return nil, fmt.Errorf("error leyendo BER")
		}

		berStr := strings.TrimSpace(app.scanner.Text())
		if berStr == "" {
			config.BER = 0.01 // Valor por defecto
			break
		}

		ber, err := strconv.ParseFloat(berStr, 64)
		if err != nil {
			fmt.Fprintln(app.out, "❌ BER inválido")
			continue
		}
		if ber < 0.0 || ber > 1.0 {
			fmt.Fprintln(app.out, "❌ BER debe estar entre 0.0 y 1.0")
			continue
		}
		config.BER = ber
		break
	}

	// Cantidad de iteraciones
	for {
		fmt.Fprint(app.out, "Número de iteraciones [1000]: ")
		if !app.scanner.Scan() {
			return nil, fmt.Errorf("error leyendo cantidad")
		}

		countStr := strings.TrimSpace(app.scanner.Text())
		if countStr == "" {
			config.Count = 1000 // Valor por defecto
			break
		}

		count, err := strconv.Atoi(countStr)
		if err != nil {
			fmt.Fprintln(app.out, "❌ Cantidad inválida")
			continue
		}
		if count <= 0 {
			fmt.Fprintln(app.out, "❌ La cantidad debe ser mayor a 0")
			continue
		}
		config.Count = count
		break
	}

	return config, nil
}

// MostrarConfiguracion muestra la configuración seleccionada
func (app *ApplicationLayer) MostrarConfiguracion(config *MessageConfig) {
	fmt.Fprintln(app.out, "\n📋 Configuración:")
	fmt.Fprintf(app.out, "   Mensaje: \"%s\"\n", config.Text)
	fmt.Fprintf(app.out, "   Algoritmo: %s\n", strings.ToUpper(config.Algorithm))
	fmt.Fprintf(app.out, "   BER: %.3f (%.1f%%)\n", config.BER, config.BER*100)
	fmt.Fprintf(app.out, "   Modo: %s\n", config.Mode)
	if config.Mode == "benchmark" {
		fmt.Fprintf(app.out, "   Iteraciones: %d\n", config.Count)
	}
	fmt.Fprintln(app.out)
}

// MostrarResultado muestra el resultado de la transmisión
func (app *ApplicationLayer) MostrarResultado(success bool, details string) {
	if success {
		fmt.Fprintf(app.out, "✅ Transmisión exitosa: %s\n", details)
	} else {
		fmt.Fprintf(app.out, "❌ Error en transmisión: %s\n", details)
	}
}

// Estadisticas resume un benchmark para mostrarlo al usuario
type Estadisticas struct {
	Total       int
	Exitosos    int
	Fallidos    int
	TasaExito   float64
	TiempoMedio time.Duration
}

// MostrarEstadisticas muestra estadísticas de benchmark
func (app *ApplicationLayer) MostrarEstadisticas(stats Estadisticas) {
	fmt.Fprintln(app.out, "\n📊 Estadísticas de Benchmark:")
	fmt.Fprintln(app.out, "─────────────────────────────")
	fmt.Fprintf(app.out, "Total de mensajes: %d\n", stats.Total)
	fmt.Fprintf(app.out, "Exitosos: %d\n", stats.Exitosos)
	fmt.Fprintf(app.out, "Fallidos: %d\n", stats.Fallidos)
	fmt.Fprintf(app.out, "Tasa de éxito: %.2f%%\n", stats.TasaExito*100)
	fmt.Fprintf(app.out, "Tiempo promedio: %v\n", stats.TiempoMedio)
	fmt.Fprintln(app.out)
}

// ValidarConfiguracion valida que la configuración sea válida
func (app *ApplicationLayer) ValidarConfiguracion(config *MessageConfig) error {
	if config == nil {
		return fmt.Errorf("configuración es nil")
	}

	if config.Text == "" {
		return fmt.Errorf("el mensaje no puede estar vacío")
	}

	if config.Algorithm != AlgorithmBoth {
		if _, err := link.ParseAlgorithm(config.Algorithm); err != nil {
			return fmt.Errorf("algoritmo inválido: %w", err)
		}
	}

	if config.Algorithm == AlgorithmBoth && config.Mode != "benchmark" {
		return fmt.Errorf("'both' solo se permite en modo benchmark")
	}

	if config.Mode == "manual" {
		if err := presentation.NewPresentationLayer().ValidarTexto(config.Text); err != nil {
			return err
		}
	}

	if config.BER < 0.0 || config.BER > 1.0 {
		return fmt.Errorf("BER inválido: %.3f (debe estar entre 0.0 y 1.0)", config.BER)
	}

	if config.Mode == "benchmark" && config.Count <= 0 {
		return fmt.Errorf("cantidad de iteraciones inválida: %d", config.Count)
	}

	return nil
}
