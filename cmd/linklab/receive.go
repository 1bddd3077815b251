package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/metrics"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/receiver"
)

func newReceiveCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Inicia el receptor WebSocket",
		Long: `Inicia el receptor. Cada mensaje WebSocket binario (o texto hex) se
interpreta como una trama y se responde con un JSON. Las estadísticas, los
resultados recientes y las métricas Prometheus se sirven por HTTP en el
mismo puerto.`,
		Example: `  linklab receive --listen :8765
  LINKLAB_RECEIVER_LISTEN=:9000 linklab receive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rcfg := a.cfg.Receiver
			if listen != "" {
				rcfg.Listen = listen
			}

			svc := receiver.NewService(
				receiver.WithLogger(a.log),
				receiver.WithMetrics(metrics.New()),
				receiver.WithRecentLimit(rcfg.RecentLimit),
			)
			srv := receiver.NewServer(rcfg, svc, a.log)

			a.log.WithFields(logrus.Fields{
				"listen":  rcfg.Listen,
				"path":    rcfg.Path,
				"metrics": rcfg.MetricsPath,
			}).Info("starting receiver")

			if err := srv.Run(cmd.Context()); err != nil {
				return err
			}

			st := svc.Stats()
			a.log.WithFields(logrus.Fields{
				"total":        st.Total,
				"successful":   st.Successful,
				"success_rate": st.SuccessRate,
			}).Info("receiver stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "dirección de escucha (default: receiver.listen)")
	return cmd
}
