package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatview/internal/index"
)

const nameColumn = 24

func participantsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "participants [file]",
		Short: "List participants with message counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := index.OpenDB()
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			o, err := a.orchestrator(index.NewPublisher(db), stderrNotifier{w: os.Stderr})
			if err != nil {
				return err
			}
			st, _, err := load(cmd.Context(), o, fileArg(args))
			if err != nil {
				return err
			}

			counts, err := db.AuthorCounts()
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			byAuthor := make(map[string]index.AuthorCount, len(counts))
			for _, c := range counts {
				byAuthor[c.Author] = c
			}

			if len(st.Participants) == 0 {
				fmt.Fprintln(os.Stderr, "No participants.")
				return nil
			}

			// * marks the active participant
			for _, name := range st.Participants {
				mark := " "
				if name == st.ActiveParticipant {
					mark = "*"
				}
				c := byAuthor[name]
				label := runewidth.FillRight(runewidth.Truncate(name, nameColumn, "…"), nameColumn)
				fmt.Printf("%s %s %6d  %s  %s\n", mark, label, c.Messages, c.First, c.Last)
			}
			return nil
		},
	}
}
