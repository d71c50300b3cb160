package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"upsfw/host/exporter"
)

func NewDaemonCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Export UPS state over HTTP and MQTT",
		Long: `Poll the UPS and serve /status, /healthz and /metrics. With mqtt.enabled in the
config file every reading is also published to the configured topic.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logrus.Infof("config loaded: source=%s poll=%s listen=%s", cfg.Source, cfg.PollInterval, cfg.HTTP.Listen)

			src, err := openSource(cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			var pub exporter.Publisher
			if cfg.MQTT.Enabled {
				p, err := exporter.NewMQTTPublisher(cfg.MQTT)
				if err != nil {
					return err
				}
				defer p.Close()
				pub = p
				logrus.Infof("publishing to %s on %s", cfg.MQTT.Topic, cfg.MQTT.Broker)
			}

			d := exporter.NewDaemon(src, exporter.NewMetrics(), pub, logrus.StandardLogger())
			d.StaleAfter = 3 * cfg.PollInterval
			if d.StaleAfter < 10*time.Second {
				d.StaleAfter = 10 * time.Second
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              cfg.HTTP.Listen,
				Handler:           d.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				logrus.Infof("http server listening on %s", cfg.HTTP.Listen)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logrus.WithError(err).Error("http server failed")
					stop()
				}
			}()

			err = d.Run(ctx)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logrus.WithError(serr).Warn("http server shutdown")
			}
			return err
		},
	}
}
