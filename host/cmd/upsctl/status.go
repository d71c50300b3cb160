package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"upsfw/core"
	"upsfw/host/ups"
)

var bold = color.New(color.Bold).SprintfFunc()

// flagColors highlights the flags a user should act on.
var flagColors = map[core.Status]*color.Color{
	core.ACPresent:                   color.New(color.FgGreen),
	core.Charging:                    color.New(color.FgGreen),
	core.FullyCharged:                color.New(color.FgGreen),
	core.Discharging:                 color.New(color.FgYellow),
	core.BelowRemainingCapacityLimit: color.New(color.FgYellow),
	core.RemainingTimeLimitExpired:   color.New(color.FgRed),
	core.ShutdownRequested:           color.New(color.FgRed),
	core.ShutdownImminent:            color.New(color.Bold, color.FgRed),
	core.FullyDischarged:             color.New(color.Bold, color.FgRed),
	core.Overload:                    color.New(color.Bold, color.FgRed),
}

func renderFlags(st core.Status) string {
	if st == 0 {
		return "none"
	}
	out := ""
	for bit := core.Status(1); bit <= core.Overload; bit <<= 1 {
		if !st.Has(bit) {
			continue
		}
		if out != "" {
			out += " "
		}
		if c, ok := flagColors[bit]; ok {
			out += c.Sprint(bit.String())
		} else {
			out += bit.String()
		}
	}
	return out
}

func renderRuntime(r ups.Reading) string {
	if !r.RuntimeKnown {
		return "unknown"
	}
	return (time.Duration(r.RuntimeSeconds) * time.Second).String()
}

func printReading(w io.Writer, r ups.Reading) {
	power := color.GreenString("mains")
	if r.OnBattery() {
		power = color.RedString("battery")
	}
	fmt.Fprintf(w, "Power:    %s\n", bold("%s", power))
	fmt.Fprintf(w, "Capacity: %s\n", bold("%d%%", r.CapacityPercent))
	fmt.Fprintf(w, "Runtime:  %s\n", bold("%s", renderRuntime(r)))
	if r.BatteryVoltage != 0 || r.InputVoltage != 0 {
		fmt.Fprintf(w, "Battery:  %s\n", bold("%.2f V", r.BatteryVoltage))
		fmt.Fprintf(w, "Input:    %s\n", bold("%.2f V", r.InputVoltage))
		fmt.Fprintf(w, "Current:  %s\n", bold("%.3f A", r.Current))
	}
	fmt.Fprintf(w, "Flags:    %s\n", renderFlags(r.Status))
}

func NewStatusCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current UPS state",
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

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			r, err := src.Next(ctx)
			if err != nil {
				return fmt.Errorf("failed to read UPS: %w", err)
			}
			printReading(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "give up after this long")
	return cmd
}
