package readnovel

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"bookscrape-backend/lib/htmlutil"
	"bookscrape-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// selector extraction for pages served without a hydration payload,
// e.g. cached error variants or older site versions

func fallbackBook(doc *goquery.Document, base *url.URL) Book {
	covers := htmlutil.GetImageSources(doc.Find("div.book-cover img").First(), base)
	cover := ""
	if len(covers) > 0 {
		cover = covers[0]
	}

	status := StatusUnknown
	switch textutil.NormalizeTitle(doc.Find("span.book-status").First().Text()) {
	case "ongoing":
		status = StatusOngoing
	case "completed":
		status = StatusCompleted
	case "paused", "on hiatus":
		status = StatusPaused
	}

	return Book{
		Title:       textutil.CleanText(doc.Find("h1.book-title").First().Text()),
		Author:      textutil.CleanText(doc.Find("a.book-author").First().Text()),
		CoverUrl:    cover,
		Description: textutil.CleanText(doc.Find("div.book-description").First().Text()),
		Status:      status,
	}
}

var chapterNumberRegex = regexp.MustCompile(`(?i)chapter\s+(\d+(?:\.\d+)?)`)

func fallbackChapters(ctx context.Context, doc *goquery.Document, base *url.URL) []Chapter {
	anchors := htmlutil.GetAnchors(ctx, doc.Find("ul.chapter-list a"), base)

	chapters := make([]Chapter, 0, len(anchors))
	for _, a := range anchors {
		if a == (htmlutil.Anchor{}) {
			continue
		}

		number := 0.0
		groups := chapterNumberRegex.FindStringSubmatch(a.Name)
		if len(groups) == 2 {
			number, _ = strconv.ParseFloat(groups[1], 64)
		}

		chapters = append(chapters, Chapter{
			Id:     chapterIdFromUrl(a.Href),
			Title:  a.Name,
			Url:    a.Href,
			Number: number,
		})
	}
	return chapters
}

// the chapter id is the last path segment of its url
func chapterIdFromUrl(href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	path := link.Path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
