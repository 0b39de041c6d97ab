package cmd

import (
	"fmt"
	"log"
	"os"

	"bookscrape-backend/lib/bookstore"
	"bookscrape-backend/lib/scrapers/readnovel"

	"github.com/spf13/cobra"
)

var BaseUrl string

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "bookscrape",
	Short: "bookscrape is a CLI interface for the book site scraping adapters.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "bookscrape.db",
		"path to the sqlite catalog database",
	)
}

func newClient(cmd *cobra.Command) *readnovel.Client {
	client, err := readnovel.NewClient(cmd.Context(), readnovel.ClientOptions{
		BaseUrl:  BaseUrl,
		ClientId: "cli",
	})
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func openStore() bookstore.Store {
	db, err := bookstore.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	return bookstore.NewStore(db)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
