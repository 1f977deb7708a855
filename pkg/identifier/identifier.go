// Package identifier turns arbitrary schema-derived strings (titles, JSON pointer segments,
// property names) into valid, collision-free Go exported identifiers. Mirrors the teacher's
// pkg/tagparser layout: a small, independently-testable leaf package with a narrow API.
package identifier

import (
	"strconv"
	"strings"
	"unicode"
)

// Sanitize converts s into a valid Go exported identifier: splits on non-alphanumeric
// separators (snake_case, kebab-case, space case, and existing camelCase/PascalCase runs are all
// accepted as word boundaries), PascalCases each word, and guards against a leading digit or an
// entirely empty result.
func Sanitize(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return "Value"
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteString(titleCase(w))
	}
	out := b.String()
	if out == "" {
		return "Value"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "N" + out
	}
	return out
}

// SanitizeLower behaves like Sanitize but lower-cases the first rune of the result, for
// unexported field names and local variables in generated code.
func SanitizeLower(s string) string {
	out := Sanitize(s)
	if out == "" {
		return out
	}
	r := []rune(out)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// splitWords breaks s into words on: runs of non-alphanumeric characters and lower-to-upper case
// transitions (so "HTTPServer" splits as "HTTP","Server" and "fooBar" splits as "foo","Bar").
// Digits stay in the word around them: "2fast" is a single word.
func splitWords(s string) []string {
	var words []string
	var cur []rune
	runes := []rune(s)

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			flush()
			cur = append(cur, r)
		case i > 0 && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) &&
			unicode.IsUpper(runes[i-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	// preserve existing all-caps acronyms (e.g. "HTTP", "URL") verbatim.
	if isAllUpper(w) {
		return w
	}
	r := []rune(strings.ToLower(w))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func isAllUpper(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// Reserve returns a name guaranteed not to be in taken: candidate itself if free, otherwise
// candidate with an ascending integer suffix (candidate2, candidate3, ...), matching spec.md
// §4.3's "on collision, append an ascending integer suffix". taken is mutated to record the
// returned name.
func Reserve(candidate string, taken map[string]bool) string {
	if !taken[candidate] {
		taken[candidate] = true
		return candidate
	}
	for n := 2; ; n++ {
		attempt := candidate + strconv.Itoa(n)
		if !taken[attempt] {
			taken[attempt] = true
			return attempt
		}
	}
}
