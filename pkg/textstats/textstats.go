package textstats

import (
	"strings"
	"unicode/utf8"
)

// Counts are the derived counters stored alongside raw content.
type Counts struct {
	Words int
	Chars int
}

// Count returns the word count (whitespace-separated tokens) and the
// character count (code points) of content.
func Count(content string) Counts {
	return Counts{
		Words: len(strings.Fields(content)),
		Chars: utf8.RuneCountInString(content),
	}
}

// Snippet collapses whitespace and cuts content to at most limit characters,
// appending "..." when it was cut.
func Snippet(content string, limit int) string {
	res := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(res) <= limit {
		return res
	}
	runes := []rune(res)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
