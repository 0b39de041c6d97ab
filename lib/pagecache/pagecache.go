// Package pagecache holds fetched pages in a badger store keyed by
// normalized url, so repeated catalog walks don't hammer the site.
package pagecache

import (
	"bytes"
	"context"
	"encoding/gob"
	"net/url"

	"bookscrape-backend/lib/timezone"

	"github.com/PuerkitoBio/purell"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bookscrape.lib.pagecache")

var ErrPageNotFound = badger.ErrKeyNotFound

type Page struct {
	Body []byte

	ExpiresAt int64
}

type Cache struct {
	db      *badger.DB
	baseUrl *url.URL
}

func New(db *badger.DB, baseUrl *url.URL) Cache {
	return Cache{
		db:      db,
		baseUrl: baseUrl,
	}
}

func (c Cache) key(clientId, endpoint string) (string, error) {
	full, err := c.baseUrl.Parse(endpoint)
	if err != nil {
		return "", err
	}
	normalized := purell.NormalizeURL(
		full,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	return clientId + ":" + normalized, nil
}

func (c Cache) Get(ctx context.Context, clientId, endpoint string) (Page, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()

	key, err := c.key(clientId, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return Page{}, err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	tx := c.db.NewTransaction(false)
	defer tx.Discard()
	item, err := tx.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return Page{}, ErrPageNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return Page{}, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return Page{}, err
	}

	var cached Page
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to deserialize cached item")
		return Page{}, err
	}

	if timezone.Now().Unix() >= cached.ExpiresAt {
		span.AddEvent("delete expired cache key", trace.WithAttributes(
			attribute.String("key", key),
		))

		tx := c.db.NewTransaction(true)
		defer tx.Commit()

		err = tx.Delete([]byte(key))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete expired key")
		}

		span.SetStatus(codes.Ok, "CACHE EXPIRED")
		return Page{}, ErrPageNotFound
	}

	span.AddEvent("successfully returned cached page", trace.WithAttributes(
		attribute.Int("contentlength", len(cached.Body)),
	))

	return cached, nil
}

func (c Cache) Set(ctx context.Context, clientId, endpoint string, page Page) error {
	ctx, span := tracer.Start(ctx, "Set")
	defer span.End()

	key, err := c.key(clientId, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create cache key")
		return err
	}
	span.SetAttributes(attribute.String("cache_key", key))

	serialized := bytes.NewBuffer(nil)
	err = gob.NewEncoder(serialized).Encode(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize page")
		return err
	}

	tx := c.db.NewTransaction(true)
	defer tx.Commit()

	err = tx.Set([]byte(key), serialized.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}

	return nil
}
