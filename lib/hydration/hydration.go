// Package hydration decodes the serialized state table that
// server-rendered pages embed in their markup. The payload is a flat
// JSON array of slots in which repeated substructures are stored once
// and referenced by integer index instead of being duplicated inline.
//
// The reference rule is inherited from the wire format: any whole
// number found while traversing the contents of an array or object
// slot is a backreference whenever it falls inside the table bounds.
// A legitimate numeric field whose value happens to be a small valid
// index is therefore indistinguishable from a reference and will be
// expanded; this ambiguity belongs to the format, not the decoder.
package hydration

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSelector matches the element sites embed their serialized
// state in.
const DefaultSelector = `script[type="application/json"]`

// Table is the flat ordered sequence of slots parsed from the embedded
// payload. It is the sole input to resolution and is never mutated.
type Table []any

// Extract pulls the state table out of raw page markup using
// DefaultSelector. It reports false when the designated element is
// missing, its text is not valid JSON, or the payload is not an array.
func Extract(markup string) (Table, bool) {
	return ExtractSelector(markup, DefaultSelector)
}

// ExtractSelector is Extract with a caller-chosen element selector.
// The first matching element wins.
func ExtractSelector(markup, selector string) (Table, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, false
	}
	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return nil, false
	}

	var table []any
	err = json.Unmarshal([]byte(node.Text()), &table)
	if err != nil {
		return nil, false
	}
	return Table(table), true
}

// Locate finds the first slot strictly equal to key and returns the
// index of the slot immediately after it, which holds the key's value
// (either a literal or a reference). It reports false when the key is
// absent or sits at the very end of the table.
func Locate(table Table, key string) (int, bool) {
	for i, slot := range table {
		s, ok := slot.(string)
		if !ok || s != key {
			continue
		}
		if i+1 >= len(table) {
			return 0, false
		}
		return i + 1, true
	}
	return 0, false
}

// ValueByKey locates key in the table and fully resolves its value,
// asserting the result to T. It reports false when the key is missing
// or the resolved value is not a T. This is the operation site
// adapters use to pull out records by their known hydration keys.
func ValueByKey[T any](table Table, key string) (T, bool) {
	var zero T
	idx, ok := Locate(table, key)
	if !ok {
		return zero, false
	}
	out, ok := Resolve(table, table[idx]).(T)
	if !ok {
		return zero, false
	}
	return out, true
}
