package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/link"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

func newDecodeCmd(a *app) *cobra.Command {
	var (
		hammingBits string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "decode [frame-hex]",
		Short: "Interpreta una trama hex o decodifica bits Hamming(7,4)",
		Long: `Sin flags interpreta la trama hexadecimal igual que el receptor: clasifica
el tipo, corrige con Hamming si aplica y valida el CRC-32.

Con --hamming-bits decodifica una cadena de bloques de 7 bits y muestra las
posiciones corregidas.`,
		Example: `  linklab decode 01000148f8e4409a
  linklab decode --json "02 0002 0008 000e 98e0 7c1ca9a0"
  linklab decode --hamming-bits 01100110110110`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if hammingBits != "" {
				in, err := parseBits(hammingBits)
				if err != nil {
					return err
				}
				data, corrected, err := frame.Hamming74Decode(in)
				if err != nil {
					return fmt.Errorf("error en decodificación Hamming: %w", err)
				}
				fmt.Fprintf(out, "Bits recibidos: %s (longitud: %d)\n", formatBits(in), len(in))
				fmt.Fprintf(out, "Bits de datos: %s (longitud: %d)\n", formatBits(data), len(data))
				fmt.Fprintf(out, "Correcciones: %d %v\n", len(corrected), corrected)
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("se requiere una trama hex o --hamming-bits")
			}
			b, err := parseHex(args[0])
			if err != nil {
				return err
			}

			res := link.NewInterpreter(a.log).Process(b)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintf(out, "Tamaño: %d bytes (%d bits)\n", res.FrameSize, res.TotalBits)
			fmt.Fprintf(out, "Tipo: 0x%02x → %s\n", res.MsgType, res.Algorithm)
			fmt.Fprintf(out, "CRC válido: %t\n", res.CRCValid)
			if res.Algorithm == link.AlgorithmHamming {
				fmt.Fprintf(out, "Correcciones: %d %v\n", res.Corrections(), res.CorrectedPositions)
			}
			if !res.Success {
				fmt.Fprintf(out, "❌ %s: %s\n", res.ErrorKind, res.Cause)
				return nil
			}
			fmt.Fprintf(out, "✅ Mensaje: \"%s\"\n", res.Message)
			if bits := presentation.TextToBits(res.Message); len(bits) > 0 {
				fmt.Fprintf(out, "   Bits: %s\n", formatBits(bits))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hammingBits, "hamming-bits", "", "cadena de bloques Hamming(7,4) a decodificar")
	cmd.Flags().BoolVar(&asJSON, "json", false, "imprimir el resultado como JSON")
	return cmd
}
