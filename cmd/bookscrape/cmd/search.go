package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Searches the synced catalog by title.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()

		results, err := store.Search(cmd.Context(), args[0], searchLimit)
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Score", "Slug", "Title", "Author"})

		for _, r := range results {
			t.AppendRow(table.Row{
				fmt.Sprintf("%.2f", r.Score),
				r.Book.Slug,
				r.Book.Title,
				r.Book.Author,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
