package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Iron Ore", "iron ore"},
		{"diacritics", "Café", "cafe"},
		{"uppercase", "CAFE", "cafe"},
		{"whitespace runs", "  Maple \t Forest \n", "maple forest"},
		{"punctuation stripped", "Rock-Boulder (large)!", "rockboulder large"},
		{"digits kept", "Tier 3 Clay", "tier 3 clay"},
		{"empty", "", ""},
		{"symbols only", "!!! ***", ""},
		{"combining marks", "Café", "cafe"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"Iron Ore", "Café au Lait", "  spaced   out  ", "ÅÄÖ mixed 123", ""}
	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), "input %q", in)
	}
}

func TestCanonicalizeCaseAndDiacriticInsensitive(t *testing.T) {
	t.Parallel()

	a := Canonicalize("Café")
	assert.Equal(t, a, Canonicalize("cafe"))
	assert.Equal(t, a, Canonicalize("CAFE"))
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Maple Forest", "maple-forest"},
		{"Huntable Animal", "huntable-animal"},
		{"Misty Tundra", "misty-tundra"},
		{"Alt-Right", "alt-right"},
		{"Épée Collection", "epee-collection"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}
