package models

import (
	"gorm.io/gorm"

	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
)

// EntryAlias is an alternate display name for an entry, kept so searches
// on community nicknames still resolve. The canonical alias is unique per
// entry.
type EntryAlias struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	EntryID        uint   `gorm:"not null;uniqueIndex:idx_entry_aliases_key" json:"entry_id"`
	Entry          *Entry `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"entry,omitempty"`
	Alias          string `gorm:"type:varchar(80);not null" json:"alias" validate:"required,max=80"`
	CanonicalAlias string `gorm:"type:varchar(80);not null;uniqueIndex:idx_entry_aliases_key" json:"canonical_alias"`
}

func (a *EntryAlias) BeforeCreate(tx *gorm.DB) error {
	if a.CanonicalAlias == "" {
		a.CanonicalAlias = canonical.Canonicalize(a.Alias)
	}
	return nil
}
