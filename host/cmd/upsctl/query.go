package main

import (
	"github.com/spf13/cobra"

	"upsfw/host/config"
	"upsfw/host/ups"
)

func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <command>...",
		Short: "Send raw smart-protocol commands",
		Long: `Send one or more smart-protocol commands over the serial port and print the responses.

Example: upsctl query Y ^A f j`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceFlag = config.SourceSerial
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := openLegacy(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			for _, a := range args {
				resp, err := client.Query(a)
				if err != nil {
					return err
				}
				cmd.Printf("%s\t%s\n", a, resp)
			}
			return nil
		},
	}
}

func NewCommandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the smart-protocol command table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range ups.Commands() {
				cmd.Printf("%-3s %-24s %s\n", c.Code, c.Response, c.Help)
			}
			return nil
		},
	}
}
