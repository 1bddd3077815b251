package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/bench"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		tests      int
		lengths    []int
		bers       []float64
		algorithms []string
		seed       int64
		workers    int
		output     string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Corre el benchmark CRC / Hamming local y escribe un reporte CSV",
		Long: `Corre la grilla (algoritmo x longitud de mensaje x BER) en el proceso,
sin receptor. Las pruebas se reparten entre combinaciones, con más muestras
para los canales limpios o con poco ruido. Los resultados se guardan en CSV
y se resumen.`,
		Example: `  linklab bench --tests 10000 --output results/benchmark.csv
  linklab bench --algorithms hamming --ber 0,0.01 --lengths 5,50 --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bcfg := a.cfg.Bench
			f := cmd.Flags()
			if f.Changed("tests") {
				bcfg.Tests = tests
			}
			if f.Changed("lengths") {
				bcfg.Lengths = lengths
			}
			if f.Changed("ber") {
				bcfg.BER = bers
			}
			if f.Changed("algorithms") {
				bcfg.Algorithms = algorithms
			}
			if f.Changed("seed") {
				bcfg.Seed = seed
			}
			if f.Changed("workers") {
				bcfg.Workers = workers
			}
			if f.Changed("output") {
				bcfg.Output = output
			}

			runner, err := bench.NewRunner(bcfg, a.log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			combos := runner.Plan()
			planned := 0
			for _, c := range combos {
				planned += c.Tests
			}
			fmt.Fprintf(out, "🎯 Benchmark: %d pruebas en %d combinaciones (%d workers)\n",
				planned, len(combos), bcfg.Workers)

			records, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}

			if bcfg.Output != "" {
				if err := writeCSVFile(bcfg.Output, records); err != nil {
					return err
				}
				a.log.WithFields(logrus.Fields{
					"path":    bcfg.Output,
					"records": len(records),
				}).Info("benchmark results saved")
				fmt.Fprintf(out, "💾 Resultados guardados en %s\n", bcfg.Output)
			}

			bench.PrintSummary(out, bench.Summarize(records))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&tests, "tests", 0, "cantidad total de pruebas (default: bench.tests)")
	f.IntSliceVar(&lengths, "lengths", nil, "longitudes de mensaje (default: bench.lengths)")
	f.Float64SliceVar(&bers, "ber", nil, "valores de BER (default: bench.ber)")
	f.StringSliceVar(&algorithms, "algorithms", nil, "crc y/o hamming (default: bench.algorithms)")
	f.Int64Var(&seed, "seed", 0, "semilla base (default: bench.seed)")
	f.IntVarP(&workers, "workers", "w", 0, "workers en paralelo (default: bench.workers)")
	f.StringVarP(&output, "output", "o", "", "ruta del CSV, vacía para omitirlo (default: bench.output)")
	return cmd
}

func writeCSVFile(path string, records []bench.Record) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return bench.WriteCSV(f, records)
}
