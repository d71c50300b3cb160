package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"upsfw/core"
	"upsfw/host/sim"
)

func NewSimulateCommand() *cobra.Command {
	var (
		mode     string
		duration time.Duration
		cells    int
		echo     bool
		commands []string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the firmware pipeline against a simulated battery",
		Long: `Run the firmware pipeline on this machine against a simulated converter, battery and
mains supply, and print everything the device would send to the host.

The simulation runs in simulated time; --duration is how much of it to run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p := core.DefaultParams()
			switch cells {
			case 1:
				p.Battery = core.SingleCellParams()
			case 2:
			default:
				return errors.Errorf("unsupported cell count %d", cells)
			}
			p.EchoTelemetry = echo

			var m core.ProtocolMode
			switch mode {
			case "hid":
				m = core.StructuredReport
			case "cdc":
				m = core.LegacyText
			default:
				return errors.Errorf("unknown mode %q (hid or cdc)", mode)
			}

			s, err := sim.New(m, p, cfg.Sim)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range commands {
				for _, e := range s.Command(c) {
					fmt.Fprintf(out, "%10s  > %-4s %s\n", e.At, c, e.Line)
				}
			}

			var last core.Status
			for s.Clock.Now() < duration {
				st := s.Step()
				for _, e := range s.Drain() {
					if e.Line != "" {
						fmt.Fprintf(out, "%10s  %s\n", e.At.Truncate(time.Millisecond), e.Line)
					} else {
						fmt.Fprintf(out, "%10s  %s\n", e.At.Truncate(time.Millisecond), e.Report)
					}
				}
				if st.Status != last {
					fmt.Fprintf(out, "%10s  [%s] %.2f V %d%%\n", s.Clock.Now().Truncate(time.Millisecond), renderFlags(st.Status), st.BatteryVoltage, st.Metrics.CapacityPercent)
					last = st.Status
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "hid", "protocol personality: hid or cdc")
	cmd.Flags().DurationVar(&duration, "duration", time.Minute, "simulated time to run")
	cmd.Flags().IntVar(&cells, "cells", 2, "battery cells in series (1 or 2)")
	cmd.Flags().BoolVar(&echo, "echo", true, "print the telemetry line in cdc mode")
	cmd.Flags().StringSliceVar(&commands, "send", nil, "smart-protocol commands to send first (cdc mode)")
	return cmd
}
