// Package moderation screens submitted text against a prohibited-term list.
//
// Matching is substring-based over canonicalized text, so a banned term
// embedded inside a longer word is flagged too. That strictness is
// intentional and matches how the deny list is curated.
package moderation

import (
	"strings"

	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
)

// DefaultTerms is the built-in deny list. Deployments can replace it via
// the MODERATION_TERMS environment override at startup.
var DefaultTerms = []string{
	"nazi", "kkk", "alt-right", "alt right", "neo-nazi", "white power",
	"swastika", "1488", "14/88",
	"fuck", "shit", "bitch", "asshole", "cunt", "bastard", "dick", "piss",
}

// Filter holds an immutable, pre-canonicalized term list. Construct once
// and share freely; all methods are pure and safe for concurrent use.
type Filter struct {
	terms     []string // original spelling, reported back on a match
	canonical []string // canonicalized form, used for matching
}

// NewFilter builds a Filter from the given terms. Terms that canonicalize
// to the empty string are dropped. List order is preserved, which makes
// ContainsProhibited deterministic about which term it reports.
func NewFilter(terms []string) *Filter {
	f := &Filter{
		terms:     make([]string, 0, len(terms)),
		canonical: make([]string, 0, len(terms)),
	}
	for _, term := range terms {
		c := canonical.Canonicalize(term)
		if c == "" {
			continue
		}
		f.terms = append(f.terms, term)
		f.canonical = append(f.canonical, c)
	}
	return f
}

// NewDefaultFilter builds a Filter over DefaultTerms.
func NewDefaultFilter() *Filter {
	return NewFilter(DefaultTerms)
}

// ContainsProhibited reports whether the canonicalized text contains any
// configured term as a substring. On a match it returns the first matching
// term in list order, in its original spelling.
func (f *Filter) ContainsProhibited(text string) (bool, string) {
	canon := canonical.Canonicalize(text)
	for i, c := range f.canonical {
		if strings.Contains(canon, c) {
			return true, f.terms[i]
		}
	}
	return false, ""
}
