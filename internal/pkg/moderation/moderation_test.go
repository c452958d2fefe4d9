package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsProhibited(t *testing.T) {
	t.Parallel()

	f := NewDefaultFilter()

	tests := []struct {
		name     string
		text     string
		matched  bool
		wantTerm string
	}{
		{"clean", "Iron Ore", false, ""},
		{"exact term", "fuck", true, "fuck"},
		{"mixed case", "This is FUCKED up", true, "fuck"},
		{"diacritics", "fúck this", true, "fuck"},
		{"substring in longer word", "scunthorpe", true, "cunt"},
		{"multi word term", "white power rock", true, "white power"},
		{"numeric term", "item 1488 edition", true, "1488"},
		{"slash variant", "14/88 club", true, "1488"},
		{"empty", "", false, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			matched, term := f.ContainsProhibited(tt.text)
			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.wantTerm, term)
		})
	}
}

func TestContainsProhibitedListOrder(t *testing.T) {
	t.Parallel()

	// Both terms match; the first in list order wins.
	f := NewFilter([]string{"bad apple", "apple"})
	matched, term := f.ContainsProhibited("one bad apple")
	assert.True(t, matched)
	assert.Equal(t, "bad apple", term)
}

func TestNewFilterDropsEmptyTerms(t *testing.T) {
	t.Parallel()

	f := NewFilter([]string{"  ", "!!!", "real"})
	matched, term := f.ContainsProhibited("a real problem")
	assert.True(t, matched)
	assert.Equal(t, "real", term)

	matched, _ = f.ContainsProhibited("anything else at all")
	assert.False(t, matched)
}

func TestCustomTermSet(t *testing.T) {
	t.Parallel()

	// Construction-time injection keeps filters independent; the default
	// list must not leak into a custom filter.
	f := NewFilter([]string{"gravel"})
	matched, _ := f.ContainsProhibited("fuck")
	assert.False(t, matched)

	matched, term := f.ContainsProhibited("Gravel Pit")
	assert.True(t, matched)
	assert.Equal(t, "gravel", term)
}
