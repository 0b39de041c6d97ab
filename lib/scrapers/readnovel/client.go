// Package readnovel scrapes book catalogs, chapter lists and chapter
// bodies from readnovel-style sites. These sites server-render their
// state into an embedded hydration payload, so every operation first
// tries the structured table via lib/hydration and only falls back to
// selector extraction when no payload is present.
package readnovel

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"time"

	"bookscrape-backend/lib/hydration"
	"bookscrape-backend/lib/pagecache"
	"bookscrape-backend/lib/telemetry"
	"bookscrape-backend/lib/timezone"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("bookscrape.lib.scrapers.readnovel")

// hydration keys the site stores its per-page records under
const (
	keyCurrentBook    = "current-book"
	keyChapterList    = "chapter-list"
	keyCurrentChapter = "current-chapter"
)

const PAGE_LIFETIME = int64(time.Minute * 15 / time.Second)

type Client struct {
	ClientId string
	BaseUrl  *url.URL
	Http     *resty.Client

	cache     *pagecache.Cache
	maxJitter time.Duration
}

type ClientOptions struct {
	BaseUrl string
	// a unique id for this client, used for cache
	ClientId string
	// if unspecified, pages are refetched every time
	Cache *badger.DB
	// upper bound on the random delay inserted before uncached
	// fetches, to stay polite
	MaxJitter time.Duration
}

func NewClient(ctx context.Context, opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(time.Second * 30)

	telemetry.InstrumentResty(client, "bookscrape.lib.scrapers.readnovel.http")

	c := &Client{
		ClientId:  opts.ClientId,
		BaseUrl:   baseUrl,
		Http:      client,
		maxJitter: opts.MaxJitter,
	}
	if opts.Cache != nil {
		cache := pagecache.New(opts.Cache, baseUrl)
		c.cache = &cache
	}
	return c, nil
}

func (c *Client) jitter() {
	if c.maxJitter <= 0 {
		return
	}
	ms, err := random.IntRange(0, int(c.maxJitter/time.Millisecond)+1)
	if err != nil {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// fetchPage returns the raw markup for an endpoint, going through the
// page cache when one is configured.
func (c *Client) fetchPage(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "fetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("url", endpoint))

	if c.cache != nil {
		page, err := c.cache.Get(ctx, c.ClientId, endpoint)
		if err == nil {
			span.SetStatus(codes.Ok, "CACHE HIT")
			return page.Body, nil
		}
		if err != pagecache.ErrPageNotFound {
			span.RecordError(err)
		}
	}

	c.jitter()

	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, err
	}
	if res.StatusCode() != 200 {
		err = fmt.Errorf("unexpected status %d for %s", res.StatusCode(), endpoint)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}

	if c.cache != nil {
		err = c.cache.Set(ctx, c.ClientId, endpoint, pagecache.Page{
			Body:      res.Body(),
			ExpiresAt: timezone.Now().Unix() + PAGE_LIFETIME,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to cache request")
		}
	}

	return res.Body(), nil
}

type Book struct {
	Slug        string
	Title       string
	Author      string
	CoverUrl    string
	Description string
	Status      Status
}

// Book fetches a book's landing page and maps its record out of the
// hydration state, falling back to selectors when the payload is
// missing.
func (c *Client) Book(ctx context.Context, slug string) (Book, error) {
	ctx, span := tracer.Start(ctx, "client:Book")
	defer span.End()
	span.SetAttributes(attribute.String("slug", slug))

	body, err := c.fetchPage(ctx, "/book/"+url.PathEscape(slug))
	if err != nil {
		return Book{}, err
	}

	table, ok := hydration.Extract(string(body))
	if ok {
		record, ok := hydration.ValueByKey[map[string]any](table, keyCurrentBook)
		if ok {
			book := decodeBook(record)
			book.Slug = slug
			return book, nil
		}
		span.AddEvent("hydration table has no book record")
	}

	// no structured data, scrape the markup instead
	slog.DebugContext(ctx, "falling back to markup extraction", "op", "book", "slug", slug)

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return Book{}, err
	}
	book := fallbackBook(doc, c.BaseUrl)
	book.Slug = slug
	return book, nil
}

type Chapter struct {
	Id         string
	Title      string
	Url        string
	Number     float64
	UploadedAt time.Time
}

// Chapters fetches the book's chapter index.
func (c *Client) Chapters(ctx context.Context, slug string) ([]Chapter, error) {
	ctx, span := tracer.Start(ctx, "client:Chapters")
	defer span.End()
	span.SetAttributes(attribute.String("slug", slug))

	body, err := c.fetchPage(ctx, "/book/"+url.PathEscape(slug)+"/chapters")
	if err != nil {
		return nil, err
	}

	table, ok := hydration.Extract(string(body))
	if ok {
		records, ok := hydration.ValueByKey[[]any](table, keyChapterList)
		if ok {
			chapters := make([]Chapter, 0, len(records))
			for _, r := range records {
				record, ok := r.(map[string]any)
				if !ok {
					continue
				}
				chapters = append(chapters, decodeChapter(record))
			}
			return chapters, nil
		}
		span.AddEvent("hydration table has no chapter list")
	}

	slog.DebugContext(ctx, "falling back to markup extraction", "op", "chapters", "slug", slug)

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, err
	}
	return fallbackChapters(ctx, doc, c.BaseUrl), nil
}

// ChapterContent fetches a chapter page and returns its body markup.
func (c *Client) ChapterContent(ctx context.Context, slug, chapterId string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:ChapterContent")
	defer span.End()
	span.SetAttributes(
		attribute.String("slug", slug),
		attribute.String("chapter", chapterId),
	)

	body, err := c.fetchPage(
		ctx,
		"/book/"+url.PathEscape(slug)+"/"+url.PathEscape(chapterId),
	)
	if err != nil {
		return "", err
	}

	table, ok := hydration.Extract(string(body))
	if ok {
		record, ok := hydration.ValueByKey[map[string]any](table, keyCurrentChapter)
		if ok {
			content := getString(record, "content")
			if content != "" {
				return content, nil
			}
		}
		span.AddEvent("hydration table has no chapter content")
	}

	slog.DebugContext(ctx, "falling back to markup extraction",
		"op", "chapter_content", "slug", slug, "chapter", chapterId)

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return "", err
	}
	content, err := doc.Find("div.chapter-content").Html()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize html content")
		return "", err
	}
	return content, nil
}
