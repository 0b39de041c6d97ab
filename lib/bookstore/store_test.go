package bookstore

import (
	"context"
	"testing"
	"time"

	"bookscrape-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) Store {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		err := db.Close()
		if err != nil {
			t.Fatal(err)
		}
	})
	return NewStore(db)
}

func TestUpsertBook(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.UpsertBook(ctx, Book{
		Slug:  "winter-garden",
		Title: "The Winter Garden",
	})
	require.NoError(t, err)

	err = store.UpsertBook(ctx, Book{
		Slug:     "winter-garden",
		Title:    "The Winter Garden",
		Author:   "A. Author",
		CoverUrl: "https://books.example/covers/1.jpg",
	})
	require.NoError(t, err)

	book, err := store.GetBook(ctx, "winter-garden")
	require.NoError(t, err)
	require.Equal(t, "A. Author", book.Author)
	require.Equal(t, "https://books.example/covers/1.jpg", book.CoverUrl)
}

func TestReplaceChapters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	err := store.UpsertBook(ctx, Book{Slug: "winter-garden", Title: "The Winter Garden"})
	require.NoError(t, err)

	uploaded := time.Date(2026, 3, 1, 12, 0, 0, 0, timezone.Location)
	err = store.ReplaceChapters(ctx, "winter-garden", []Chapter{
		{Id: "c2", Title: "Chapter 2", Url: "/book/winter-garden/c2", Number: 2, UploadedAt: uploaded},
		{Id: "c1", Title: "Chapter 1", Url: "/book/winter-garden/c1", Number: 1, UploadedAt: uploaded},
	})
	require.NoError(t, err)

	chapters, err := store.Chapters(ctx, "winter-garden")
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	require.Equal(t, "c1", chapters[0].Id)
	require.Equal(t, "c2", chapters[1].Id)
	require.Equal(t, uploaded.Unix(), chapters[0].UploadedAt.Unix())

	// a renumbered refresh fully replaces the old list
	err = store.ReplaceChapters(ctx, "winter-garden", []Chapter{
		{Id: "c1", Title: "Chapter 1 (revised)", Url: "/book/winter-garden/c1", Number: 1, UploadedAt: uploaded},
	})
	require.NoError(t, err)

	chapters, err = store.Chapters(ctx, "winter-garden")
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	require.Equal(t, "Chapter 1 (revised)", chapters[0].Title)
}

func TestSearch(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	books := []Book{
		{Slug: "winter-garden", Title: "The Winter Garden"},
		{Slug: "space-pirates", Title: "Space Pirates"},
		{Slug: "garden-walls", Title: "Garden Walls"},
	}
	for _, b := range books {
		err := store.UpsertBook(ctx, b)
		require.NoError(t, err)
	}

	results, err := store.Search(ctx, "winter garden", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "winter-garden", results[0].Book.Slug)
	require.Greater(t, results[0].Score, results[1].Score)
}
