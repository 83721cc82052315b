package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatview/internal/index"
	"github.com/Zuo-Peng/chatview/internal/render"
	"github.com/Zuo-Peng/chatview/internal/source"
	"github.com/Zuo-Peng/chatview/internal/tui"
)

func viewCmd(a *app) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Browse a chat export in the terminal UI",
		Long: `Opens the terminal UI on a WhatsApp export. Without a file the bundled
sample chat is loaded. Press o inside the UI to load another export.

When stdout is not a terminal, or the export is read from stdin (-),
the whole timeline is printed as plain text instead.

With --follow the export is ingested again whenever the file changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fileArg(args)

			db, err := index.OpenDB()
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			// Plain output for pipes; the TUI needs stdin for keys
			if path == source.Stdin || !term.IsTerminal(int(os.Stdout.Fd())) {
				o, err := a.orchestrator(index.NewPublisher(db), stderrNotifier{w: os.Stderr})
				if err != nil {
					return err
				}
				st, info, err := load(cmd.Context(), o, path)
				if err != nil {
					return err
				}
				out, _ := render.RenderTimeline(st, render.Options{
					Title:   info.Name,
					Context: -1,
					NoColor: true,
				})
				fmt.Print(out)
				return nil
			}

			if follow {
				info, err := os.Stat(path)
				if err != nil || info.IsDir() {
					return fmt.Errorf("--follow needs an export file, got %q", path)
				}
			}

			n := tui.NewNotifier()
			o, err := a.orchestrator(index.NewPublisher(db), n)
			if err != nil {
				return err
			}
			return tui.Run(tui.Options{
				Orchestrator: o,
				DB:           db,
				Notifier:     n,
				Path:         path,
				Follow:       follow,
			})
		},
	}

	cmd.Flags().BoolVar(&follow, "follow", false, "Reload the export when it changes on disk")

	return cmd
}
