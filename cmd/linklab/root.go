package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/config"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/log"
)

// app guarda el estado que comparten los subcomandos tras leer los flags.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "linklab",
		Short: "linklab - capa de enlace CRC-32 / Hamming(7,4) sobre un canal ruidoso",
		Long: `linklab simula la capa de enlace de un canal ruidoso.

El emisor convierte texto ASCII en bits, arma una trama con CRC-32 o con
Hamming(7,4) + CRC-32, invierte bits según un BER y la envía por WebSocket.
El receptor corrige (Hamming), valida el CRC y recupera el mensaje.

Capas:
  1. Aplicación    - input del usuario
  2. Presentación  - ASCII ↔ bits
  3. Enlace        - CRC-32 / Hamming(7,4)
  4. Ruido         - inyección de errores (BER)
  5. Transmisión   - WebSocket`,
		Version:       "0.2.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "ruta del archivo de configuración (YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "reemplaza log.level")

	root.AddCommand(
		newEmitCmd(a),
		newReceiveCmd(a),
		newBenchCmd(a),
		newHammingCmd(a),
		newCRCCmd(a),
		newDecodeCmd(a),
		newChannelCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := log.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	return nil
}
