package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "chatview",
		Short:         "chatview - browse WhatsApp chat exports in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Name() == "view")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.config/chatview/config.toml)")

	rootCmd.AddCommand(viewCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(participantsCmd(a))
	rootCmd.AddCommand(openCmd(a))
	rootCmd.AddCommand(doctorCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
