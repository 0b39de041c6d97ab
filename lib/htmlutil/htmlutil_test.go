package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestGetAnchors(t *testing.T) {
	markup := `<ul>
		<li><a href="/book/1">  The Winter
			Garden </a></li>
		<li><a href="https://other.example/book/2">Space Pirates</a></li>
	</ul>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	base, err := url.Parse("https://books.example")
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), doc.Find("a"), base)
	require.Equal(t, []Anchor{
		{Name: "The Winter Garden", Href: "https://books.example/book/1"},
		{Name: "Space Pirates", Href: "https://other.example/book/2"},
	}, anchors)
}

func TestGetImageSources(t *testing.T) {
	markup := `<div>
		<img src="/covers/1.jpg">
		<img data-src="/covers/2.jpg">
		<img alt="no source">
	</div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)

	base, err := url.Parse("https://books.example")
	require.NoError(t, err)

	sources := GetImageSources(doc.Find("img"), base)
	require.Equal(t, []string{
		"https://books.example/covers/1.jpg",
		"https://books.example/covers/2.jpg",
	}, sources)
}
