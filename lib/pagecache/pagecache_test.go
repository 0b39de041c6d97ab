package pagecache

import (
	"context"
	"net/url"
	"testing"

	"bookscrape-backend/lib/timezone"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) Cache {
	db, err := badger.Open(
		badger.DefaultOptions(t.TempDir()).WithLogger(nil),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		err := db.Close()
		if err != nil {
			t.Fatal(err)
		}
	})

	base, err := url.Parse("https://books.example")
	require.NoError(t, err)

	return New(db, base)
}

func TestCacheRoundtrip(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "client", "/book/1")
	require.ErrorIs(t, err, ErrPageNotFound)

	err = cache.Set(ctx, "client", "/book/1", Page{
		Body:      []byte("<html>contents</html>"),
		ExpiresAt: timezone.Now().Unix() + 60,
	})
	require.NoError(t, err)

	page, err := cache.Get(ctx, "client", "/book/1")
	require.NoError(t, err)
	require.Equal(t, []byte("<html>contents</html>"), page.Body)
}

func TestCacheExpiry(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, "client", "/book/2", Page{
		Body:      []byte("stale"),
		ExpiresAt: timezone.Now().Unix() - 1,
	})
	require.NoError(t, err)

	_, err = cache.Get(ctx, "client", "/book/2")
	require.ErrorIs(t, err, ErrPageNotFound)
}

func TestCacheKeyNormalization(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	err := cache.Set(ctx, "client", "/book/3?b=2&a=1", Page{
		Body:      []byte("page"),
		ExpiresAt: timezone.Now().Unix() + 60,
	})
	require.NoError(t, err)

	// same url with query params in a different order
	page, err := cache.Get(ctx, "client", "/book/3?a=1&b=2")
	require.NoError(t, err)
	require.Equal(t, []byte("page"), page.Body)

	// a different client id addresses a different entry
	_, err = cache.Get(ctx, "other", "/book/3?a=1&b=2")
	require.ErrorIs(t, err, ErrPageNotFound)
}
