package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
)

func newHammingCmd(a *app) *cobra.Command {
	var bits string

	cmd := &cobra.Command{
		Use:     "hamming",
		Short:   "Codifica una cadena binaria con Hamming(7,4)",
		Example: "  linklab hamming --bits 110101",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseBits(bits)
			if err != nil {
				return err
			}
			encoded, err := frame.Hamming74Encode(in)
			if err != nil {
				return fmt.Errorf("error en codificación Hamming: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bits de entrada: %s (longitud: %d)\n", formatBits(in), len(in))
			fmt.Fprintf(out, "Bits codificados: %s (longitud: %d)\n", formatBits(encoded), len(encoded))

			// bloque: [p2, p1, d3, p0, d2, d1, d0]
			fmt.Fprintf(out, "\nDesglose por bloques de 7 bits:\n")
			for i := 0; i+7 <= len(encoded); i += 7 {
				b := encoded[i : i+7]
				fmt.Fprintf(out, "  Bloque %d: %s [p2=%d, p1=%d, d3=%d, p0=%d, d2=%d, d1=%d, d0=%d]\n",
					i/7+1, formatBits(b), b[0], b[1], b[2], b[3], b[4], b[5], b[6])
				fmt.Fprintf(out, "    Datos orig.: %d%d%d%d\n", b[2], b[4], b[5], b[6])
			}

			if padded := (len(in) + 3) / 4 * 4; padded > len(in) {
				fmt.Fprintf(out, "\nPadding aplicado: %d bits (de %d a %d bits)\n", padded-len(in), len(in), padded)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&bits, "bits", "b", "", "cadena binaria (ej: '110101')")
	_ = cmd.MarkFlagRequired("bits")
	return cmd
}
