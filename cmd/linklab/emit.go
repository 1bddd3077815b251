package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/application"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/emitter"
)

type emitOptions struct {
	mode      string
	text      string
	algorithm string
	ber       float64
	count     int
	url       string
	seed      int64
	noWait    bool
}

func newEmitCmd(a *app) *cobra.Command {
	o := &emitOptions{}

	cmd := &cobra.Command{
		Use:   "emit",
		Short: "Codifica un mensaje, le agrega ruido y lo envía al receptor",
		Long: `Emisor por capas. Sin --text pide el mensaje de forma interactiva.

Modos:
  manual    - transmisión de un mensaje con detalle por capa
  benchmark - múltiples transmisiones para análisis estadístico`,
		Example: `  # interactivo
  linklab emit --mode benchmark

  # no interactivo
  linklab emit --text "Hola" --algorithm hamming --ber 0.01
  linklab emit --mode benchmark --text "Hola" --algorithm both --count 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEmit(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.mode, "mode", "m", "manual", "modo: manual o benchmark")
	f.StringVarP(&o.text, "text", "t", "", "mensaje a enviar (vacío = interactivo)")
	f.StringVarP(&o.algorithm, "algorithm", "a", "", "crc, hamming o both (default: emitter.algorithm)")
	f.Float64Var(&o.ber, "ber", -1, "bit error rate (default: emitter.ber)")
	f.IntVarP(&o.count, "count", "n", 100, "iteraciones en modo benchmark")
	f.StringVar(&o.url, "url", "", "URL del receptor (default: emitter.url)")
	f.Int64Var(&o.seed, "seed", 0, "semilla del canal (default: emitter.seed, 0 = por tiempo)")
	f.BoolVar(&o.noWait, "no-wait", false, "no esperar la respuesta del receptor")
	return cmd
}

func (a *app) runEmit(cmd *cobra.Command, o *emitOptions) error {
	if o.mode != "manual" && o.mode != "benchmark" {
		return fmt.Errorf("modo inválido: %s (usar 'manual' o 'benchmark')", o.mode)
	}

	out := cmd.OutOrStdout()
	ecfg := a.cfg.Emitter
	if o.url != "" {
		ecfg.URL = o.url
	}
	if o.noWait {
		ecfg.WaitReply = false
	}
	seed := ecfg.Seed
	if o.seed != 0 {
		seed = o.seed
	}

	fmt.Fprintln(out, "🚀 Emisor por Capas - Lab 2")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(out, "Modo: %s\n", o.mode)
	fmt.Fprintf(out, "Receptor: %s\n\n", ecfg.URL)

	ui := application.NewApplicationLayerWithIO(cmd.InOrStdin(), out)
	msg, err := o.messageConfig(ui, a.cfg.Emitter.Algorithm, a.cfg.Emitter.BER)
	if err != nil {
		return fmt.Errorf("error en configuración: %w", err)
	}
	if err := ui.ValidarConfiguracion(msg); err != nil {
		return fmt.Errorf("configuración inválida: %w", err)
	}
	ui.MostrarConfiguracion(msg)

	transport := emitter.NewWSTransport(ecfg)
	defer transport.Close()
	em := emitter.New(transport,
		emitter.WithOutput(out),
		emitter.WithLogger(a.log),
		emitter.WithSeed(seed),
	)

	ctx := cmd.Context()
	if msg.Mode == "manual" {
		result, err := em.ProcessMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("error en transmisión: %w", err)
		}
		em.MostrarResultadoDetallado(result)
		if !result.Success {
			return fmt.Errorf("transmisión fallida: %s", result.Error)
		}
		return nil
	}

	for _, alg := range msg.Algorithms() {
		run := *msg
		run.Algorithm = string(alg)
		benchmark, err := em.RunBenchmark(ctx, &run)
		if err != nil {
			return fmt.Errorf("error en benchmark: %w", err)
		}
		em.AnalizarBenchmark(benchmark)
		ui.MostrarEstadisticas(benchmark.Estadisticas())
	}
	return nil
}

// messageConfig arma la configuración desde los flags o, sin --text, desde
// la capa de aplicación.
func (o *emitOptions) messageConfig(ui *application.ApplicationLayer, defAlg string, defBER float64) (*application.MessageConfig, error) {
	if o.text == "" {
		return ui.SolicitarMensaje(o.mode)
	}
	msg := &application.MessageConfig{
		Text:      o.text,
		Algorithm: o.algorithm,
		BER:       o.ber,
		Mode:      o.mode,
		Count:     1,
	}
	if msg.Algorithm == "" {
		msg.Algorithm = defAlg
	}
	if msg.BER < 0 {
		msg.BER = defBER
	}
	if o.mode == "benchmark" {
		msg.Count = o.count
	}
	return msg, nil
}

