package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

func newCRCCmd(a *app) *cobra.Command {
	var (
		bits        string
		withHamming bool
	)

	cmd := &cobra.Command{
		Use:   "crc",
		Short: "Arma una trama CRC-32 a partir de una cadena binaria",
		Example: `  linklab crc --bits 110101
  linklab crc --bits 01001000 --hamming`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseBits(bits)
			if err != nil {
				return err
			}

			var frameBytes []byte
			if withHamming {
				frameBytes, err = frame.BuildFrameWithHamming(in)
			} else {
				frameBytes, err = frame.BuildCRCFrame(in)
			}
			if err != nil {
				return fmt.Errorf("error construyendo frame: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Bits de entrada: %s\n", formatBits(in))
			fmt.Fprintf(out, "Frame completo (hex): %s\n", hex.EncodeToString(frameBytes))
			fmt.Fprintf(out, "Frame completo (bits): %s\n", formatBits(presentation.BytesToBits(frameBytes)))

			raw, err := frame.SplitFrame(frameBytes, withHamming)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nDesglose del frame:\n")
			fmt.Fprintf(out, "  Header (hex): %s\n", hex.EncodeToString(frameBytes[:frame.HeaderSize]))
			if raw.Lens != nil {
				fmt.Fprintf(out, "  Sub-header: original_bits=%d, encoded_bits=%d\n",
					raw.Lens.OriginalBits, raw.Lens.EncodedBits)
			}
			fmt.Fprintf(out, "  Payload (hex): %s\n", hex.EncodeToString(raw.Payload))
			fmt.Fprintf(out, "  CRC-32 (hex): %08x\n", raw.CRC)
			return nil
		},
	}

	cmd.Flags().StringVarP(&bits, "bits", "b", "", "cadena binaria (ej: '110101')")
	cmd.Flags().BoolVar(&withHamming, "hamming", false, "codificar el payload con Hamming(7,4)")
	_ = cmd.MarkFlagRequired("bits")
	return cmd
}
