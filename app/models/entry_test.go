package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryBeforeCreateDerivations(t *testing.T) {
	t.Parallel()

	e := &Entry{Name: "Côpper Ore", Tier: 2, TypeID: 1, BiomeID: 1}
	require.NoError(t, e.BeforeCreate(nil))

	assert.Len(t, e.UUID, 36)
	assert.Equal(t, "copper ore", e.CanonicalName)
	assert.Equal(t, StatusUnconfirmed, e.Status)
}

func TestEntryBeforeCreateKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	e := &Entry{
		UUID:          "fixed-uuid",
		Name:          "Copper Ore",
		CanonicalName: "custom canonical",
		Status:        StatusConfirmed,
	}
	require.NoError(t, e.BeforeCreate(nil))

	assert.Equal(t, "fixed-uuid", e.UUID)
	assert.Equal(t, "custom canonical", e.CanonicalName)
	assert.Equal(t, StatusConfirmed, e.Status)
}

func TestEntryValidateTierBounds(t *testing.T) {
	t.Parallel()

	valid := &Entry{UUID: "u", Name: "Tree", CanonicalName: "tree", Tier: 5, TypeID: 1, BiomeID: 1}
	assert.NoError(t, valid.Validate())

	for _, tier := range []int{0, 11, -3} {
		e := &Entry{UUID: "u", Name: "Tree", CanonicalName: "tree", Tier: tier, TypeID: 1, BiomeID: 1}
		assert.Error(t, e.Validate(), "tier %d should fail validation", tier)
	}
}

func TestEntryHasOfficialImage(t *testing.T) {
	t.Parallel()

	p256, p512 := "/images/a-256.webp", "/images/a-512.webp"
	assert.False(t, (&Entry{}).HasOfficialImage())
	assert.False(t, (&Entry{Img256Path: &p256}).HasOfficialImage())
	assert.True(t, (&Entry{Img256Path: &p256, Img512Path: &p512}).HasOfficialImage())
}

func TestTaxonomyBeforeCreateFillsSlug(t *testing.T) {
	t.Parallel()

	et := &EntryType{Name: "Ore Vein"}
	require.NoError(t, et.BeforeCreate(nil))
	assert.Equal(t, "ore-vein", et.Slug)

	b := &Biome{Name: "Maple Forest", Slug: "custom"}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Equal(t, "custom", b.Slug)
}

func TestReportEnums(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidTarget(ReportTargetEntry))
	assert.True(t, ValidTarget(ReportTargetOfficialImage))
	assert.False(t, ValidTarget("image"))

	assert.True(t, ValidReason(ReportReasonIncorrect))
	assert.True(t, ValidReason(ReportReasonPolicyViolation))
	assert.False(t, ValidReason("spam"))
}
