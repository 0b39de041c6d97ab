package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeTitle lowercases a book or chapter title and strips the
// whitespace variance different mirrors of the same catalog introduce.
func NormalizeTitle(title string) string {
	title = strings.ToLower(title)
	title = strings.Trim(title, " \n\t")
	title = whitespaceRegex.ReplaceAllString(title, " ")
	return title
}

// CleanText removes non-printable runes and collapses runs of
// whitespace down to a single space. Whitespace is mapped to a space
// before the printable filter runs, so words separated only by a line
// break stay separated.
func CleanText(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		switch {
		case unicode.IsSpace(c):
			out.WriteRune(' ')
		case unicode.IsPrint(c):
			out.WriteRune(c)
		}
	}
	cleaned := strings.Trim(out.String(), " ")
	return whitespaceRegex.ReplaceAllString(cleaned, " ")
}

// TitleSimilarity scores how close two titles are after normalization,
// 0 for unrelated and 1 for identical. Used to rank catalog search
// results.
func TitleSimilarity(a, b string) float64 {
	a = NormalizeTitle(a)
	b = NormalizeTitle(b)
	if a == b {
		return 1
	}
	return matchr.JaroWinkler(a, b, true)
}

// MatchTitle reports whether name contains any of the normalized
// matchers.
func MatchTitle(name string, matchers []string) bool {
	name = NormalizeTitle(name)
	for _, m := range matchers {
		if strings.Contains(name, NormalizeTitle(m)) {
			return true
		}
	}
	return false
}
