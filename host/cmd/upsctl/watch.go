package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"upsfw/core"
)

func NewWatchCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream UPS state changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			src, err := openSource(cfg)
			if err != nil {
				return err
			}
			defer src.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			var last core.Status = 0xFFFF
			for {
				r, err := src.Next(ctx)
				if ctx.Err() != nil {
					return nil
				}
				if err != nil {
					logrus.WithError(err).Warn("read failed")
					time.Sleep(time.Second)
					continue
				}
				if asJSON {
					if err := enc.Encode(r); err != nil {
						return err
					}
					continue
				}
				if r.Status != last {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", r.Time.Format("15:04:05"), renderFlags(r.Status))
					last = r.Status
				}
				logrus.WithFields(logrus.Fields{
					"capacity": r.CapacityPercent,
					"runtime":  renderRuntime(r),
				}).Debug("reading")
			}
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every reading as JSON")
	return cmd
}
