// Package canonical normalizes free text into stable matching keys.
//
// Canonical keys back the exact-duplicate index on entries, the moderation
// substring check, and the fuzzy similarity score. Slugs are the URL-safe
// identifiers for types and biomes.
package canonical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, so "Café" and
// "Cafe" collapse to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Canonicalize converts text into its canonical matching key: diacritics
// stripped, lowercased, everything but letters/digits/whitespace removed,
// whitespace runs collapsed to single spaces, trimmed.
//
// It is pure and total; empty or all-symbol input yields "".
func Canonicalize(s string) string {
	return strings.Join(tokens(s, false), " ")
}

// Slugify converts text into a hyphen-joined ASCII slug. Same stripping as
// Canonicalize but hyphens survive and tokens join with "-".
func Slugify(s string) string {
	return strings.Join(tokens(s, true), "-")
}

func tokens(s string, keepHyphens bool) []string {
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		// transform.String only fails on a misbehaving transformer; fall
		// back to the raw input rather than dropping the submission.
		stripped = s
	}

	lower := strings.ToLower(stripped)
	filtered := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return r
		case keepHyphens && r == '-':
			return r
		default:
			return -1
		}
	}, lower)

	return strings.Fields(filtered)
}
