// Package bookstore persists scraped catalogs so adapters can serve
// repeat lookups and fuzzy title search without refetching.
package bookstore

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"bookscrape-backend/lib/textutil"
	"bookscrape-backend/lib/timezone"

	_ "modernc.org/sqlite"
)

const Schema = `
create table if not exists books (
	slug text primary key,
	title text not null,
	author text not null default '',
	cover_url text not null default '',
	updated_at integer not null
);
create table if not exists chapters (
	book_slug text not null,
	id text not null,
	title text not null,
	url text not null,
	number real not null,
	uploaded_at integer not null,
	primary key (book_slug, id)
);
`

// Open opens (or creates) a sqlite database at path and applies the
// schema. `:memory:` works for tests.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return Store{db: db}
}

type Book struct {
	Slug     string
	Title    string
	Author   string
	CoverUrl string
}

type Chapter struct {
	Id         string
	Title      string
	Url        string
	Number     float64
	UploadedAt time.Time
}

func (s Store) UpsertBook(ctx context.Context, book Book) error {
	_, err := s.db.ExecContext(ctx, `
		insert into books (slug, title, author, cover_url, updated_at)
		values (?, ?, ?, ?, ?)
		on conflict (slug) do update set
			title = excluded.title,
			author = excluded.author,
			cover_url = excluded.cover_url,
			updated_at = excluded.updated_at
	`, book.Slug, book.Title, book.Author, book.CoverUrl, timezone.Now().Unix())
	return err
}

func (s Store) GetBook(ctx context.Context, slug string) (Book, error) {
	row := s.db.QueryRowContext(ctx, `
		select slug, title, author, cover_url from books where slug = ?
	`, slug)

	var book Book
	err := row.Scan(&book.Slug, &book.Title, &book.Author, &book.CoverUrl)
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

// ReplaceChapters swaps out the stored chapter list for a book in one
// transaction, since sites renumber and retitle chapters in place.
func (s Store) ReplaceChapters(ctx context.Context, slug string, chapters []Chapter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `delete from chapters where book_slug = ?`, slug)
	if err != nil {
		return err
	}

	for _, ch := range chapters {
		_, err = tx.ExecContext(ctx, `
			insert into chapters (book_slug, id, title, url, number, uploaded_at)
			values (?, ?, ?, ?, ?, ?)
		`, slug, ch.Id, ch.Title, ch.Url, ch.Number, ch.UploadedAt.Unix())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s Store) Chapters(ctx context.Context, slug string) ([]Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, title, url, number, uploaded_at
		from chapters where book_slug = ?
		order by number asc
	`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		var ch Chapter
		var uploadedAt int64
		err = rows.Scan(&ch.Id, &ch.Title, &ch.Url, &ch.Number, &uploadedAt)
		if err != nil {
			return nil, err
		}
		ch.UploadedAt = time.Unix(uploadedAt, 0).In(timezone.Location)
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

type SearchResult struct {
	Book  Book
	Score float64
}

// Search ranks every stored book against the query by title
// similarity and returns the top matches.
func (s Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		select slug, title, author, cover_url from books
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var book Book
		err = rows.Scan(&book.Slug, &book.Title, &book.Author, &book.CoverUrl)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Book:  book,
			Score: textutil.TitleSimilarity(query, book.Title),
		})
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
