package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
)

// EntryType is a catalog taxonomy axis (what kind of thing an entry is).
type EntryType struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"name" validate:"required,max=64"`
	Slug      string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Biome is the second taxonomy axis (where an entry is found).
type Biome struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"name" validate:"required,max=64"`
	Slug      string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *EntryType) BeforeCreate(tx *gorm.DB) error {
	if t.Slug == "" {
		t.Slug = canonical.Slugify(t.Name)
	}
	return nil
}

func (b *Biome) BeforeCreate(tx *gorm.DB) error {
	if b.Slug == "" {
		b.Slug = canonical.Slugify(b.Name)
	}
	return nil
}

// Default taxonomy seeded on first boot.
var (
	SeedTypes = []string{
		"Tree", "Flower", "Ore Vein", "Sand", "Mushroom", "Fiber Plant",
		"Rock Boulder", "Research", "Rock Outcrop", "Clay", "Huntable Animal",
	}
	SeedBiomes = []string{
		"Safe Meadows", "Grasslands", "Calm Forest", "Maple Forest",
		"Pine Forest", "Misty Tundra", "Rocky Garden", "Swamp", "Desert",
		"Snowy Peaks", "Jungle", "Sawoods", "Ocean",
	}
)

// SeedTaxonomy inserts any missing default types and biomes. Existing rows
// are left untouched, so reruns are safe.
func SeedTaxonomy(db *gorm.DB) error {
	for _, name := range SeedTypes {
		var count int64
		if err := db.Model(&EntryType{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&EntryType{Name: name, Slug: canonical.Slugify(name), IsActive: true}).Error; err != nil {
				return err
			}
		}
	}
	for _, name := range SeedBiomes {
		var count int64
		if err := db.Model(&Biome{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&Biome{Name: name, Slug: canonical.Slugify(name), IsActive: true}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
