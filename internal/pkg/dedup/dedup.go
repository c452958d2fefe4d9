// Package dedup decides whether two catalog entries describe the same
// real-world thing.
//
// Exact matches are handled by the unique index on
// (tier, type, biome, canonical name); this package supplies the fuzzy
// advisory check layered on top of it.
package dedup

import "unicode/utf8"

// DefaultThreshold is the similarity score at or above which two entries
// in the same bucket count as a strong duplicate. 0.90 tolerates small
// typos and pluralization while keeping materially different names apart.
const DefaultThreshold = 0.90

// Candidate is the comparable projection of an entry: its dedup bucket
// plus the canonical name.
type Candidate struct {
	Tier          int
	TypeID        uint
	BiomeID       uint
	CanonicalName string
}

// Detector scores canonical-name similarity within a (tier, type, biome)
// bucket. Zero-allocation state; safe for concurrent use.
type Detector struct {
	threshold float64
}

// NewDetector returns a Detector with the default 0.90 threshold.
func NewDetector() *Detector {
	return &Detector{threshold: DefaultThreshold}
}

// NewDetectorWithThreshold returns a Detector with a custom threshold in [0,1].
func NewDetectorWithThreshold(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// Levenshtein computes the classic edit distance between a and b with unit
// insert/delete/substitute costs, over runes. Canonicalization keeps every
// Unicode letter and digit, so non-ASCII names must not be penalized by
// their byte width.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two-row rolling DP table.
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

// Similarity maps edit distance onto [0,1]: 1 - distance/max(1, maxLen),
// with lengths counted in runes to match the distance.
// Two empty strings score 1.0 (distance 0, denominator floored at 1).
func Similarity(a, b string) float64 {
	dist := Levenshtein(a, b)
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen < 1 {
		maxLen = 1
	}
	ratio := float64(dist) / float64(maxLen)
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio
}

// IsStrongDuplicate reports whether incoming is a strong duplicate of
// existing: same tier, type, and biome, and name similarity at or above
// the threshold. Entries in different buckets are never duplicates no
// matter how similar their names are, so the score returned for a bucket
// mismatch is 0.
//
// This check is advisory; the storage layer's unique constraint is the
// hard backstop for races that slip past it.
func (d *Detector) IsStrongDuplicate(existing, incoming Candidate) (bool, float64) {
	if existing.Tier != incoming.Tier ||
		existing.TypeID != incoming.TypeID ||
		existing.BiomeID != incoming.BiomeID {
		return false, 0
	}
	score := Similarity(existing.CanonicalName, incoming.CanonicalName)
	return score >= d.threshold, score
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
