package repository

import (
	"encoding/json"
	"errors"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/craftatlas/craftatlas/app/models"
	"github.com/craftatlas/craftatlas/internal/pkg/cache"
)

// Taxonomy barely changes after seeding, so list reads go through the
// cache with a short TTL.
const (
	cacheKeyTypes  = "taxonomy:types"
	cacheKeyBiomes = "taxonomy:biomes"
	taxonomyTTL    = 10 * time.Minute
)

type taxonomyRepository struct {
	db *gorm.DB
}

// NewTaxonomyRepository creates a new taxonomy repository instance.
func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

func (r *taxonomyRepository) ListTypes() ([]models.EntryType, error) {
	if raw, err := cache.Get(cacheKeyTypes); err == nil {
		var types []models.EntryType
		if json.Unmarshal([]byte(raw), &types) == nil {
			return types, nil
		}
	}

	var types []models.EntryType
	if err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	if data, err := json.Marshal(types); err == nil {
		if err := cache.Set(cacheKeyTypes, string(data), taxonomyTTL); err != nil {
			fiberlog.Warn("taxonomy cache write failed: ", err)
		}
	}
	return types, nil
}

func (r *taxonomyRepository) ListBiomes() ([]models.Biome, error) {
	if raw, err := cache.Get(cacheKeyBiomes); err == nil {
		var biomes []models.Biome
		if json.Unmarshal([]byte(raw), &biomes) == nil {
			return biomes, nil
		}
	}

	var biomes []models.Biome
	if err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&biomes).Error; err != nil {
		return nil, err
	}
	if data, err := json.Marshal(biomes); err == nil {
		if err := cache.Set(cacheKeyBiomes, string(data), taxonomyTTL); err != nil {
			fiberlog.Warn("taxonomy cache write failed: ", err)
		}
	}
	return biomes, nil
}

// ResolveType finds an active type by display name or slug,
// case-insensitively. Returns nil when nothing matches.
func (r *taxonomyRepository) ResolveType(nameOrSlug string) (*models.EntryType, error) {
	var t models.EntryType
	err := r.db.Where("is_active = ? AND (LOWER(name) = LOWER(?) OR LOWER(slug) = LOWER(?))",
		true, nameOrSlug, nameOrSlug).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ResolveBiome finds an active biome by display name or slug,
// case-insensitively. Returns nil when nothing matches.
func (r *taxonomyRepository) ResolveBiome(nameOrSlug string) (*models.Biome, error) {
	var b models.Biome
	err := r.db.Where("is_active = ? AND (LOWER(name) = LOWER(?) OR LOWER(slug) = LOWER(?))",
		true, nameOrSlug, nameOrSlug).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
