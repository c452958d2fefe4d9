package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
)

// Lifecycle status values for an entry.
const (
	StatusUnconfirmed = "unconfirmed"
	StatusConfirmed   = "confirmed"
)

// Entry is a community-submitted catalog record. The composite unique
// index on (tier, type_id, biome_id, canonical_name) is the exact-duplicate
// backstop behind the advisory similarity check.
type Entry struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UUID          string     `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	Tier          int        `gorm:"not null;uniqueIndex:idx_entries_key" json:"tier" validate:"required,min=1,max=10"`
	Name          string     `gorm:"type:varchar(80);not null" json:"name" validate:"required,max=80"`
	CanonicalName string     `gorm:"type:varchar(80);not null;uniqueIndex:idx_entries_key" json:"canonical_name"`
	Status        string     `gorm:"type:varchar(20);default:'unconfirmed'" json:"status"`
	TypeID        uint       `gorm:"not null;index;uniqueIndex:idx_entries_key" json:"type_id"`
	Type          *EntryType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
	BiomeID       uint       `gorm:"not null;index;uniqueIndex:idx_entries_key" json:"biome_id"`
	Biome         *Biome     `gorm:"foreignKey:BiomeID" json:"biome,omitempty"`
	// Official image triple; all three are nil until an admin promotes a
	// pending candidate or a submission carries an image.
	Img256Path  *string `gorm:"type:varchar(255)" json:"img_256_path"`
	Img512Path  *string `gorm:"type:varchar(255)" json:"img_512_path"`
	ImagePHash  *string `gorm:"type:char(16)" json:"image_phash"`
	SubmitterIP string  `gorm:"type:varchar(45);default:null" json:"-"`
	// relations
	Aliases       []EntryAlias   `gorm:"foreignKey:EntryID" json:"aliases,omitempty"`
	PendingImages []PendingImage `gorm:"foreignKey:EntryID" json:"pending_images,omitempty"`
	Reports       []Report       `gorm:"foreignKey:EntryID" json:"reports,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate fills the UUID and derives the canonical name when the
// caller did not set them.
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.New().String()
	}
	if e.CanonicalName == "" {
		e.CanonicalName = canonical.Canonicalize(e.Name)
	}
	if e.Status == "" {
		e.Status = StatusUnconfirmed
	}
	return nil
}

// Validate checks field constraints before persistence.
func (e *Entry) Validate() error {
	v := validator.New()
	return v.Struct(e)
}

// HasOfficialImage reports whether the official slot is populated.
func (e *Entry) HasOfficialImage() bool {
	return e.Img256Path != nil && e.Img512Path != nil
}

// FindEntryByUUID loads an entry with its taxonomy preloaded.
func FindEntryByUUID(db *gorm.DB, id string) (*Entry, error) {
	var entry Entry
	err := db.Preload("Type").Preload("Biome").Where("uuid = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
