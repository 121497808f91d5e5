package report

import (
	"strings"
	"unicode"

	"courtside/team-ops/internal/gameclock"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// HebrewPlaceholder replaces each run of Hebrew text; the export fonts have no Hebrew glyphs.
const HebrewPlaceholder = "[Hebrew]"

var punctuation = map[rune]string{
	'\u2018': "'", '\u2019': "'", '\u201c': `"`, '\u201d': `"`,
	'\u2013': "-", '\u2014': "-", '\u2026': "...", '\u00a0': " ",
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	return gameclock.FormatClock(seconds)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimRight(string(r[:n-3]), " ") + "..."
}

// Sanitize makes s printable with the ASCII-only export fonts: diacritics are stripped,
// Hebrew runs become HebrewPlaceholder, and any other non-ASCII rune becomes '?'.
func Sanitize(s string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	in := []rune(stripped)
	for i := 0; i < len(in); i++ {
		r := in[i]
		switch {
		case unicode.Is(unicode.Hebrew, r):
			b.WriteString(HebrewPlaceholder)
			// swallow the rest of the run, including spaces between Hebrew words
			for i+1 < len(in) && (unicode.Is(unicode.Hebrew, in[i+1]) || (in[i+1] == ' ' && nextIsHebrew(in, i+1))) {
				i++
			}
		case r <= unicode.MaxASCII:
			b.WriteRune(r)
		default:
			if rep, ok := punctuation[r]; ok {
				b.WriteString(rep)
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}

func nextIsHebrew(in []rune, i int) bool {
	for j := i; j < len(in); j++ {
		if in[j] == ' ' {
			continue
		}
		return unicode.Is(unicode.Hebrew, in[j])
	}
	return false
}
