package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatview/internal/open"
)

func openCmd(a *app) *cobra.Command {
	var message int

	cmd := &cobra.Command{
		Use:   "open <file>",
		Short: "Open the export in $EDITOR at a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(nil, stderrNotifier{w: os.Stderr})
			if err != nil {
				return err
			}
			st, info, err := load(cmd.Context(), o, args[0])
			if err != nil {
				return err
			}
			if info.Path == "" {
				return fmt.Errorf("%s is not a file on disk", info.Name)
			}

			return open.OpenRecord(info.Path, st, message)
		},
	}

	cmd.Flags().IntVar(&message, "message", 0, "Message number to jump to")

	return cmd
}
