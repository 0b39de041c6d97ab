package cmd

import (
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chaptersCmd)
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <slug>",
	Short: "Prints the chapter list of a book.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)

		chapters, err := client.Chapters(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Id", "Title", "Uploaded"})

		for _, ch := range chapters {
			uploaded := ""
			if !ch.UploadedAt.IsZero() {
				uploaded = ch.UploadedAt.Format(time.ANSIC)
			}
			t.AppendRow(table.Row{ch.Number, ch.Id, ch.Title, uploaded})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
