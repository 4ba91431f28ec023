package paths

import (
	"strings"
	"unicode"
)

// Slug turns a test function name into a readable filename component.
// Word characters survive, subtest separators become underscores, and a
// leading "test_" or else "test" is dropped.
func Slug(function string) string {
	var b strings.Builder
	for _, r := range function {
		switch {
		case r == '/':
			b.WriteByte('_')
		case r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	lower := strings.ToLower(cleaned)
	var slug string
	switch {
	case strings.HasPrefix(lower, "test_"):
		slug = cleaned[len("test_"):]
	case strings.HasPrefix(lower, "test"):
		slug = cleaned[len("test"):]
	default:
		slug = cleaned
	}

	if slug == "" {
		return cleaned
	}
	return slug
}
