package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatview/internal/index"
	"github.com/Zuo-Peng/chatview/internal/source"
)

func doctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [file]",
		Short: "Self-check: verify config, parser, index, FTS5, and show stats",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg

			fmt.Println("=== Config ===")
			if a.configPath != "" {
				fmt.Printf("  File: %s\n", a.configPath)
			} else {
				fmt.Println("  File: ~/.config/chatview/config.toml (optional)")
			}
			fmt.Printf("  Window: %d..%d\n", cfg.LowerLimit, cfg.UpperLimit)
			fmt.Printf("  Days first: %v\n", cfg.DaysFirst)
			fmt.Printf("  Attachments: %v\n", cfg.ParseAttachments)
			fmt.Printf("  Log: %s/%s", cfg.LogLevel, cfg.LogFormat)
			if cfg.LogFile != "" {
				fmt.Printf(" -> %s", cfg.LogFile)
			}
			fmt.Println()

			path := fileArg(args)
			fmt.Println("\n=== Source ===")
			if path == "" {
				fmt.Printf("  %s (bundled, %d bytes)\n", source.SampleName, source.SampleInfo().Size)
			} else if info, err := os.Stat(path); err != nil {
				fmt.Printf("  %s (NOT FOUND)\n", path)
				return nil
			} else {
				fmt.Printf("  %s (%d bytes)\n", path, info.Size())
			}

			db, err := index.OpenDB()
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			o, err := a.orchestrator(index.NewPublisher(db), stderrNotifier{w: os.Stderr})
			if err != nil {
				return err
			}

			fmt.Println("\n=== Parse ===")
			st, _, err := load(cmd.Context(), o, path)
			if err != nil {
				fmt.Printf("  Status: FAILED (%v)\n", err)
				return nil
			}
			system := 0
			for _, m := range st.Records {
				if m.IsSystem() {
					system++
				}
			}
			fmt.Printf("  Records:      %d\n", len(st.Records))
			fmt.Printf("  System:       %d\n", system)
			fmt.Printf("  Participants: %d\n", len(st.Participants))
			fmt.Printf("  Active:       %s\n", st.ActiveParticipant)
			fmt.Printf("  Visible:      %d\n", len(st.Visible()))

			fmt.Println("\n=== Index ===")
			msgCount, err := db.MessageCount()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			fmt.Printf("  Messages: %d\n", msgCount)

			ftsCount, err := db.FTSCount()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
				return nil
			}

			fmt.Println("\n=== FTS5 ===")
			fmt.Printf("  FTS5 entries: %d\n", ftsCount)
			if ftsCount == msgCount && msgCount == len(st.Records) {
				fmt.Println("  Status: OK (synced)")
			} else {
				fmt.Printf("  Status: MISMATCH (records=%d, messages=%d, fts=%d)\n", len(st.Records), msgCount, ftsCount)
			}

			if len(st.Records) > 0 {
				first, err := db.GetMessage(1)
				if err == nil && first != nil {
					fmt.Printf("\n=== First message: #%d %s %s (line %d) ===\n", first.Seq, first.Ts, first.Author, first.LineNumber)
				}
			}

			return nil
		},
	}
}
