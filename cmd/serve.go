package cmd

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloudrush/cloudrush/sim"
)

var listenAddr string

// serveCmd runs the simulation on a wall-clock loop and exposes the live
// snapshot as Prometheus metrics.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation continuously and expose /metrics",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		engine := buildEngine(cmd)

		registry := prometheus.NewRegistry()
		registry.MustRegister(sim.NewEngineCollector(engine))

		go func() {
			const frame = 50 * time.Millisecond
			ticker := time.NewTicker(frame)
			defer ticker.Stop()
			for range ticker.C {
				engine.Step(frame.Seconds())
			}
		}()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		logrus.Infof("Serving metrics on %s/metrics", listenAddr)
		if err := http.ListenAndServe(listenAddr, mux); err != nil {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":9184", "HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}
