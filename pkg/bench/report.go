package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
)

var csvHeader = []string{
	"test_id", "algorithm", "message_length", "original_bits", "total_bits",
	"overhead_bits", "overhead_ratio", "ber_target", "errors_injected",
	"actual_ber", "errors_corrected", "successful", "recovered_correctly",
	"crc_detected_correctly", "total_time_ms", "reception_time_ms",
	"message_original", "message_recovered", "error_type",
}

func ms(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds()*1000, 'f', 4, 64)
}

// WriteCSV escribe el encabezado y una fila por registro.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.TestID),
			string(r.Algorithm),
			strconv.Itoa(r.MessageLength),
			strconv.Itoa(r.OriginalBits),
			strconv.Itoa(r.TotalBits),
			strconv.Itoa(r.OverheadBits),
			strconv.FormatFloat(r.OverheadRatio, 'f', 4, 64),
			strconv.FormatFloat(r.TargetBER, 'g', -1, 64),
			strconv.Itoa(r.ErrorsInjected),
			strconv.FormatFloat(r.ActualBER, 'f', 6, 64),
			strconv.Itoa(r.ErrorsCorrected),
			strconv.FormatBool(r.Successful),
			strconv.FormatBool(r.RecoveredCorrectly),
			strconv.FormatBool(r.CRCDetectedCorrectly),
			ms(r.TotalTime),
			ms(r.ReceptionTime),
			r.Message,
			r.Recovered,
			r.ErrorKind,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// AlgorithmSummary agrega los registros de un algoritmo.
type AlgorithmSummary struct {
	Algorithm       link.Algorithm
	Tests           int
	Successful      int
	Recovered       int
	CRCDetected     int
	Corrections     int
	AverageOverhead float64
	AverageTimeMs   float64
	ErrorsByKind    map[string]int
}

// Summary agrega una corrida completa.
type Summary struct {
	Total      int
	Successful int
	Recovered  int
	Algorithms []AlgorithmSummary
}

// Summarize calcula los totales generales y por algoritmo.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	per := map[link.Algorithm]*AlgorithmSummary{}
	var order []link.Algorithm

	for _, r := range records {
		if r.Successful {
			s.Successful++
		}
		if r.RecoveredCorrectly {
			s.Recovered++
		}

		a, ok := per[r.Algorithm]
		if !ok {
			a = &AlgorithmSummary{Algorithm: r.Algorithm, ErrorsByKind: map[string]int{}}
			per[r.Algorithm] = a
			order = append(order, r.Algorithm)
		}
		a.Tests++
		if r.Successful {
			a.Successful++
		}
		if r.RecoveredCorrectly {
			a.Recovered++
		}
		if r.CRCDetectedCorrectly {
			a.CRCDetected++
		}
		a.Corrections += r.ErrorsCorrected
		a.AverageOverhead += r.OverheadRatio
		a.AverageTimeMs += r.TotalTime.Seconds() * 1000
		if r.ErrorKind != "" {
			a.ErrorsByKind[r.ErrorKind]++
		}
	}

	for _, alg := range order {
		a := per[alg]
		a.AverageOverhead /= float64(a.Tests)
		a.AverageTimeMs /= float64(a.Tests)
		s.Algorithms = append(s.Algorithms, *a)
	}
	return s
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// PrintSummary imprime el resumen en la terminal.
func PrintSummary(w io.Writer, s Summary) {
	if s.Total == 0 {
		fmt.Fprintln(w, "No results to summarize!")
		return
	}

	line := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nBENCHMARK SUMMARY\n%s\n", line, line)
	fmt.Fprintf(w, "Total tests: %d\n", s.Total)
	fmt.Fprintf(w, "Successful receptions: %d (%.1f%%)\n", s.Successful, pct(s.Successful, s.Total))
	fmt.Fprintf(w, "Correct message recovery: %d (%.1f%%)\n", s.Recovered, pct(s.Recovered, s.Total))

	for _, a := range s.Algorithms {
		fmt.Fprintf(w, "\n%s Results:\n", strings.ToUpper(string(a.Algorithm)))
		fmt.Fprintf(w, "  Tests: %d\n", a.Tests)
		fmt.Fprintf(w, "  Success rate: %.1f%%\n", pct(a.Successful, a.Tests))
		fmt.Fprintf(w, "  Correct recovery: %.1f%%\n", pct(a.Recovered, a.Tests))
		fmt.Fprintf(w, "  Average overhead: %.2f\n", a.AverageOverhead)
		fmt.Fprintf(w, "  Average time: %.3fms\n", a.AverageTimeMs)
		switch a.Algorithm {
		case link.AlgorithmCRC:
			fmt.Fprintf(w, "  Errors detected correctly: %.1f%%\n", pct(a.CRCDetected, a.Tests))
		case link.AlgorithmHamming:
			fmt.Fprintf(w, "  Total corrections made: %d\n", a.Corrections)
		}
		kinds := make([]string, 0, len(a.ErrorsByKind))
		for kind := range a.ErrorsByKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %s: %d\n", kind, a.ErrorsByKind[kind])
		}
	}
}
