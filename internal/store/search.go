package store

import (
	"strings"

	"github.com/jwulff/flowscribe/internal/transcript"
)

// MatchesEntry reports whether the entry matches the search text,
// case-insensitively. With allFields set the three raw text versions are
// searched; otherwise only the resolved display text is.
func MatchesEntry(e transcript.Entry, query string, allFields bool) bool {
	q := strings.ToLower(query)
	if allFields {
		return contains(e.ASRText, q) || contains(e.FormattedText, q) || contains(e.EditedText, q)
	}
	return contains(e.DisplayText(), q)
}

func contains(text, loweredQuery string) bool {
	return text != "" && strings.Contains(strings.ToLower(text), loweredQuery)
}

// Matches returns the byte offsets of every case-insensitive occurrence of
// query in text as [start, end) pairs, for consumers that highlight hits.
func Matches(text, query string) [][2]int {
	if query == "" || text == "" {
		return nil
	}
	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	var spans [][2]int
	for start := 0; ; {
		i := strings.Index(lowerText[start:], lowerQuery)
		if i < 0 {
			break
		}
		from := start + i
		to := from + len(lowerQuery)
		spans = append(spans, [2]int{from, to})
		start = to
	}
	return spans
}
