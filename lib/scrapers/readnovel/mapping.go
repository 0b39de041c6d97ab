package readnovel

import (
	"strconv"
	"time"

	"bookscrape-backend/lib/textutil"
	"bookscrape-backend/lib/timezone"
)

type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

// the site stores status as a small numeric enum
func statusFromCode(code float64) Status {
	switch int(code) {
	case 1:
		return StatusOngoing
	case 2:
		return StatusCompleted
	case 3:
		return StatusPaused
	}
	return StatusUnknown
}

// resolved hydration values are plain json shapes, so field mapping is
// a pile of type switches over map[string]any

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func getFloat(m map[string]any, key string) float64 {
	f, _ := m[key].(float64)
	return f
}

// getTime accepts either unix seconds or an RFC3339 string, the two
// shapes chapter upload dates show up in across site versions.
func getTime(m map[string]any, key string) time.Time {
	switch v := m[key].(type) {
	case float64:
		return time.Unix(int64(v), 0).In(timezone.Location)
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t.In(timezone.Location)
	}
	return time.Time{}
}

func decodeBook(record map[string]any) Book {
	return Book{
		Title:       textutil.CleanText(getString(record, "name")),
		Author:      textutil.CleanText(getString(record, "author")),
		CoverUrl:    getString(record, "cover"),
		Description: getString(record, "description"),
		Status:      statusFromCode(getFloat(record, "status")),
	}
}

func decodeChapter(record map[string]any) Chapter {
	id := getString(record, "id")
	if id == "" {
		// some mirrors only carry the numeric chapter id
		if n := getFloat(record, "id"); n != 0 {
			id = strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	number := getFloat(record, "number")
	return Chapter{
		Id:         id,
		Title:      textutil.CleanText(getString(record, "name")),
		Url:        getString(record, "url"),
		Number:     number,
		UploadedAt: getTime(record, "uploaded_at"),
	}
}
