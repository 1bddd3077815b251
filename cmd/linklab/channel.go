package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/noise"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

func newChannelCmd(a *app) *cobra.Command {
	var (
		text       string
		algorithm  string
		ber        float64
		iterations int
		seed       int64
		top        int
	)

	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Simula el canal ruidoso sobre la trama de un mensaje",
		Long: `Arma la trama del mensaje y le aplica ruido repetidas veces para
estimar el comportamiento del canal: BER medio, varianza y distribución
de la cantidad de errores por transmisión.`,
		Example: `  linklab channel --text "Hola mundo" --ber 0.01 --iterations 1000
  linklab channel --text "Hola" --algorithm crc --ber 0.05 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := link.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			frameBytes, err := link.EncodeMessage(text, alg)
			if err != nil {
				return err
			}
			bits := presentation.BytesToBits(frameBytes)

			if seed == 0 {
				seed = noise.ObtenerSemilla()
			}
			layer := noise.NewNoiseLayerWithSeed(seed)
			if err := layer.ValidarConfiguracion(ber, bits); err != nil {
				return err
			}
			stats, err := layer.Simulate(bits, ber, iterations)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "📡 Simulación del canal")
			fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			fmt.Fprintf(out, "Trama %s: %d bytes (%d bits)\n", alg, len(frameBytes), len(bits))
			fmt.Fprintf(out, "Iteraciones: %d (semilla %d)\n", stats.Iterations, seed)
			fmt.Fprintf(out, "BER objetivo: %.4f, promedio: %.4f (σ %.4f)\n",
				stats.TargetBER, stats.AverageBER, stats.BERStdDev)
			fmt.Fprintf(out, "Errores por transmisión: %.2f (min %d, max %d)\n",
				stats.AverageErrorsPerTransmission, stats.MinErrors, stats.MaxErrors)

			fmt.Fprintln(out, "\nDistribución más frecuente:")
			for _, e := range stats.TopErrors(top) {
				fmt.Fprintf(out, "  %3d errores: %d veces (%.1f%%)\n",
					e.Errors, e.Count, float64(e.Count)/float64(stats.Iterations)*100)
			}

			estimates := noise.EstimarImpacto(len(bits), []float64{0, 0.001, 0.01, 0.05, 0.1})
			bers := make([]float64, 0, len(estimates))
			for b := range estimates {
				bers = append(bers, b)
			}
			sort.Float64s(bers)
			fmt.Fprintln(out, "\nErrores esperados por BER:")
			for _, b := range bers {
				fmt.Fprintf(out, "  BER %.3f → %.2f\n", b, estimates[b])
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&text, "text", "t", "Hola", "mensaje a enmarcar")
	f.StringVarP(&algorithm, "algorithm", "a", "hamming", "crc o hamming")
	f.Float64Var(&ber, "ber", 0.01, "bit error rate")
	f.IntVarP(&iterations, "iterations", "n", 1000, "cantidad de simulaciones")
	f.Int64Var(&seed, "seed", 0, "semilla del canal (0 = por tiempo)")
	f.IntVar(&top, "top", 5, "entradas de la distribución a mostrar")
	return cmd
}
