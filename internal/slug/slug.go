// Package slug derives identifier-safe slugs from category names.
package slug

import (
	"regexp"
	"strings"
)

// Fallback is returned when a name produces no usable characters.
const Fallback = "category"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

var cyrillic = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Make lowercases name, transliterates Cyrillic letters to Latin, and
// collapses everything outside [a-z0-9] into single hyphens.
func Make(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if latin, ok := cyrillic[r]; ok {
			sb.WriteString(latin)
			continue
		}
		sb.WriteRune(r)
	}

	s := strings.Trim(nonSlug.ReplaceAllString(sb.String(), "-"), "-")
	if s == "" {
		return Fallback
	}
	return s
}
