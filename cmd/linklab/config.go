package main

import (
	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Imprime la configuración efectiva en YAML",
		Long: `Imprime la configuración tras aplicar los valores por defecto, el archivo
de configuración y las variables LINKLAB_*.`,
		Example: `  linklab config
  linklab --config linklab.yaml config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.Dump(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
