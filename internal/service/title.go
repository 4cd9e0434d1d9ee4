package service

import "unicode/utf8"

const (
	// TitleMaxRunes is the number of characters kept in a derived title.
	TitleMaxRunes = 50
	titleEllipsis = "..."
)

// DeriveTitle returns the first TitleMaxRunes characters of content, with an
// ellipsis appended when anything was cut. Characters are counted as runes so
// multi-byte text is never split mid-character.
func DeriveTitle(content string) string {
	if utf8.RuneCountInString(content) <= TitleMaxRunes {
		return content
	}
	n := 0
	for i := range content {
		if n == TitleMaxRunes {
			return content[:i] + titleEllipsis
		}
		n++
	}
	return content
}
