package main

import (
	"bookscrape-backend/cmd/bookscrape/cmd"
	"fmt"
	"os"
)

func main() {
	baseUrl, ok := os.LookupEnv("BOOKSCRAPE_BASE_URL")
	if !ok {
		fmt.Println("You should specify the base url of the site to scrape in the environment variable BOOKSCRAPE_BASE_URL.")
		os.Exit(1)
	}
	cmd.BaseUrl = baseUrl

	cmd.Execute()
}
