package readnovel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bookscrape-backend/lib/telemetry"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/book.html
var bookPage []byte

//go:embed testdata/chapters.html
var chaptersPage []byte

//go:embed testdata/chapter.html
var chapterPage []byte

//go:embed testdata/book_fallback.html
var bookFallbackPage []byte

//go:embed testdata/chapter_fallback.html
var chapterFallbackPage []byte

func setupServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	mux := http.NewServeMux()
	serve := func(page []byte) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if requests != nil {
				requests.Add(1)
			}
			w.Header().Set("content-type", "text/html")
			w.Write(page)
		}
	}
	mux.HandleFunc("/book/winter-garden", serve(bookPage))
	mux.HandleFunc("/book/winter-garden/chapters", serve(chaptersPage))
	mux.HandleFunc("/book/winter-garden/c1", serve(chapterPage))
	mux.HandleFunc("/book/space-pirates", serve(bookFallbackPage))
	mux.HandleFunc("/book/space-pirates/chapters", serve(bookFallbackPage))
	mux.HandleFunc("/book/space-pirates/c1", serve(chapterFallbackPage))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupClient(t *testing.T, server *httptest.Server, cache *badger.DB) *Client {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/readnovel")
	t.Cleanup(cleanup)

	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl:  server.URL,
		ClientId: "test",
		Cache:    cache,
	})
	require.NoError(t, err)
	return client
}

func TestBookFromHydration(t *testing.T) {
	server := setupServer(t, nil)
	client := setupClient(t, server, nil)

	book, err := client.Book(context.Background(), "winter-garden")
	require.NoError(t, err)

	require.Equal(t, Book{
		Slug:        "winter-garden",
		Title:       "The Winter Garden",
		Author:      "A. Author",
		CoverUrl:    "/covers/wg.jpg",
		Description: "A quiet story.",
		Status:      StatusOngoing,
	}, book)
}

func TestChaptersFromHydration(t *testing.T) {
	server := setupServer(t, nil)
	client := setupClient(t, server, nil)

	chapters, err := client.Chapters(context.Background(), "winter-garden")
	require.NoError(t, err)
	require.Len(t, chapters, 2)

	require.Equal(t, "c1", chapters[0].Id)
	require.Equal(t, "Chapter 1", chapters[0].Title)
	require.Equal(t, "/book/winter-garden/c1", chapters[0].Url)
	require.Equal(t, 1.0, chapters[0].Number)
	require.Equal(t, int64(1740830400), chapters[0].UploadedAt.Unix())

	require.Equal(t, "c2", chapters[1].Id)
	require.Equal(t, 2.0, chapters[1].Number)
	// uploaded_at is a shared slot, both chapters carry the same date
	require.Equal(t, chapters[0].UploadedAt, chapters[1].UploadedAt)
}

func TestChapterContentFromHydration(t *testing.T) {
	server := setupServer(t, nil)
	client := setupClient(t, server, nil)

	content, err := client.ChapterContent(context.Background(), "winter-garden", "c1")
	require.NoError(t, err)
	require.Equal(t,
		"<p>It was the first warm day of spring.</p><p>The gate stood open.</p>",
		content,
	)
}

func TestBookFallback(t *testing.T) {
	server := setupServer(t, nil)
	client := setupClient(t, server, nil)

	book, err := client.Book(context.Background(), "space-pirates")
	require.NoError(t, err)

	require.Equal(t, "Space Pirates", book.Title)
	require.Equal(t, "B. Writer", book.Author)
	require.Equal(t, "A loud story.", book.Description)
	require.Equal(t, StatusCompleted, book.Status)
	require.Contains(t, book.CoverUrl, "/covers/sp.jpg")
}

func TestChaptersFallback(t *testing.T) {
	server := setupServer(t, nil)
	client := setupClient(t, server, nil)

	chapters, err := client.Chapters(context.Background(), "space-pirates")
	require.NoError(t, err)
	require.Len(t, chapters, 2)

	require.Equal(t, "c1", chapters[0].Id)
	require.Equal(t, "Chapter 1: Cast Off", chapters[0].Title)
	require.Equal(t, 1.0, chapters[0].Number)
	require.Equal(t, "c2", chapters[1].Id)
	require.Equal(t, 2.0, chapters[1].Number)
}

func TestChapterContentFallback(t *testing.T) {
	server := setupServer(t, nil)
	client := setupClient(t, server, nil)

	content, err := client.ChapterContent(context.Background(), "space-pirates", "c1")
	require.NoError(t, err)
	require.Equal(t, "<p>The engines coughed twice before they caught.</p>", content)
}

func TestPageCacheAvoidsRefetch(t *testing.T) {
	var requests atomic.Int64
	server := setupServer(t, &requests)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() {
		err := db.Close()
		if err != nil {
			t.Fatal(err)
		}
	})

	client := setupClient(t, server, db)
	ctx := context.Background()

	first, err := client.Book(ctx, "winter-garden")
	require.NoError(t, err)
	require.Equal(t, int64(1), requests.Load())

	second, err := client.Book(ctx, "winter-garden")
	require.NoError(t, err)
	require.Equal(t, int64(1), requests.Load())
	require.Equal(t, first, second)
}

func TestMissingBook(t *testing.T) {
	server := setupServer(t, nil)
	client := setupClient(t, server, nil)

	_, err := client.Book(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestGetTime(t *testing.T) {
	unix := getTime(map[string]any{"at": 1740830400.0}, "at")
	require.Equal(t, int64(1740830400), unix.Unix())

	stamp := getTime(map[string]any{"at": "2026-03-01T12:00:00Z"}, "at")
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), stamp)

	require.True(t, getTime(map[string]any{"at": "garbage"}, "at").IsZero())
	require.True(t, getTime(map[string]any{}, "at").IsZero())
}
