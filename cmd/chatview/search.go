package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/chatview/internal/chat"
	"github.com/Zuo-Peng/chatview/internal/index"
	"github.com/Zuo-Peng/chatview/internal/search"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorDim     = "\033[2m"
)

func colorizeAuthor(author string) string {
	if author == chat.SystemAuthor {
		return sColorDim + author + sColorReset
	}
	return sColorBlue + author + sColorReset
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func plainSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	return strings.ReplaceAll(snippet, "<<<", "")
}

func searchCmd(a *app) *cobra.Command {
	var author string
	var limit int
	var byRank bool

	cmd := &cobra.Command{
		Use:   "search <query> [file]",
		Short: "Full-text search across a chat export",
		Long: `Search a chat export using FTS5. Without a file the bundled sample is
searched. Output is TSV for fzf integration:
  number, time, author, snippet

Recommended shell function (add to .zshrc):
  chatf() {
    chatview search "$1" "$2" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=2.. \
      --preview "chatview show '$2' --hit {1} --context 5 --query {q}" \
      --preview-window=right:60%:wrap \
      --bind "enter:execute(chatview open '$2' --message {1})"
  }`,
		Args: cobra.RangeArgs(1, 2),
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
			if _, _, err := load(cmd.Context(), o, fileArg(args[1:])); err != nil {
				return err
			}

			results, err := search.Search(db, search.Options{
				Query:  args[0],
				Author: author,
				Limit:  limit,
				ByRank: byRank,
			})
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			color := term.IsTerminal(int(os.Stdout.Fd()))
			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				if !color {
					fmt.Printf("%d\t%s\t%s\t%s\n", r.Seq, r.Ts, r.Author, plainSnippet(snippet))
					continue
				}
				// first field (number) stays plain for fzf {1}
				fmt.Printf("%d\t%s%s%s\t%s\t%s\n",
					r.Seq,
					sColorDim, r.Ts, sColorReset,
					colorizeAuthor(r.Author),
					colorizeSnippet(snippet),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "Only messages by this author")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&byRank, "rank", false, "Order by relevance instead of time")

	return cmd
}
