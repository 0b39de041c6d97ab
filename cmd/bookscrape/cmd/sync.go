package cmd

import (
	"fmt"
	"log"

	"bookscrape-backend/lib/bookstore"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync <slug>...",
	Short: "Fetches the given books and their chapter lists into the catalog database.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient(cmd)
		store := openStore()

		for _, slug := range args {
			book, err := client.Book(cmd.Context(), slug)
			if err != nil {
				log.Fatal(err)
			}
			err = store.UpsertBook(cmd.Context(), bookstore.Book{
				Slug:     book.Slug,
				Title:    book.Title,
				Author:   book.Author,
				CoverUrl: book.CoverUrl,
			})
			if err != nil {
				log.Fatal(err)
			}

			chapters, err := client.Chapters(cmd.Context(), slug)
			if err != nil {
				log.Fatal(err)
			}
			stored := make([]bookstore.Chapter, len(chapters))
			for i, ch := range chapters {
				stored[i] = bookstore.Chapter{
					Id:         ch.Id,
					Title:      ch.Title,
					Url:        ch.Url,
					Number:     ch.Number,
					UploadedAt: ch.UploadedAt,
				}
			}
			err = store.ReplaceChapters(cmd.Context(), slug, stored)
			if err != nil {
				log.Fatal(err)
			}

			fmt.Printf("%s: %d chapters\n", slug, len(chapters))
		}
	},
}
