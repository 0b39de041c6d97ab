package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"bookscrape-backend/lib/hydration"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var decodeKey string
var decodeSelector string

func init() {
	decodeCmd.Flags().StringVar(
		&decodeKey, "key", "",
		"hydration key to resolve; when empty the raw table is printed",
	)
	decodeCmd.Flags().StringVar(
		&decodeSelector, "selector", hydration.DefaultSelector,
		"css selector of the element carrying the serialized state",
	)
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode <url-or-file>",
	Short: "Extracts the embedded hydration state of a page and prints it as JSON.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := args[0]

		var markup []byte
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			res, err := resty.New().R().
				SetContext(cmd.Context()).
				Get(target)
			if err != nil {
				log.Fatal(err)
			}
			markup = res.Body()
		} else {
			var err error
			markup, err = os.ReadFile(target)
			if err != nil {
				log.Fatal(err)
			}
		}

		table, ok := hydration.ExtractSelector(string(markup), decodeSelector)
		if !ok {
			log.Fatal("no structured data available in this page")
		}

		var out any = table
		if decodeKey != "" {
			idx, ok := hydration.Locate(table, decodeKey)
			if !ok {
				log.Fatalf("key %q is not present in the state table", decodeKey)
			}
			out = hydration.Resolve(table, table[idx])
		}

		serialized, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(serialized))
	},
}
