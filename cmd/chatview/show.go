package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatview/internal/render"
)

func showCmd(a *app) *cobra.Command {
	var hit, contextLines, width int
	var query, as string
	var noColor bool

	cmd := &cobra.Command{
		Use:   "show [file]",
		Short: "Print a chat timeline, optionally around a hit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("context") {
				contextLines = a.cfg.Context
			}

			o, err := a.orchestrator(nil, stderrNotifier{w: os.Stderr})
			if err != nil {
				return err
			}
			st, info, err := load(cmd.Context(), o, fileArg(args))
			if err != nil {
				return err
			}

			if as != "" {
				if err := o.SetActive(as); err != nil {
					return fmt.Errorf("--as %q: %w", as, err)
				}
				st = o.State()
			}

			out, _ := render.RenderTimeline(st, render.Options{
				Title:   info.Name,
				HitSeq:  hit,
				Context: contextLines,
				Width:   width,
				Query:   query,
				NoColor: noColor || !term.IsTerminal(int(os.Stdout.Fd())),
			})

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hit, "hit", -1, "Message number to highlight")
	cmd.Flags().IntVar(&contextLines, "context", 10, "Messages before/after hit to show (-1 = all)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = no wrap)")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().StringVar(&as, "as", "", "Participant to show as active")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable ANSI colors")

	return cmd
}
