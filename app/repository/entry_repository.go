package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/craftatlas/craftatlas/app/models"
	"github.com/craftatlas/craftatlas/internal/pkg/canonical"
)

// entryRepository implements EntryRepository on GORM.
type entryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new entry repository instance.
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &entryRepository{db: db}
}

func (r *entryRepository) Create(entry *models.Entry) error {
	return translateError(r.db.Create(entry).Error)
}

func (r *entryRepository) GetByID(id uint) (*models.Entry, error) {
	var entry models.Entry
	err := r.db.Preload("Type").Preload("Biome").First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepository) GetByUUID(uuid string) (*models.Entry, error) {
	var entry models.Entry
	err := r.db.Preload("Type").Preload("Biome").Where("uuid = ?", uuid).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepository) FindByKey(tier int, typeID, biomeID uint, canonicalName string) (*models.Entry, error) {
	var entry models.Entry
	err := r.db.Where("tier = ? AND type_id = ? AND biome_id = ? AND canonical_name = ?",
		tier, typeID, biomeID, canonicalName).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepository) ListBucket(tier int, typeID, biomeID uint) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.Where("tier = ? AND type_id = ? AND biome_id = ?", tier, typeID, biomeID).
		Find(&entries).Error
	return entries, err
}

func (r *entryRepository) Update(entry *models.Entry) error {
	return translateError(r.db.Save(entry).Error)
}

func (r *entryRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Entry{}).Where("id = ?", id).Update("status", status).Error
}

func (r *entryRepository) SetOfficialImage(id uint, img256, img512, phash string) error {
	return r.db.Model(&models.Entry{}).Where("id = ?", id).Updates(map[string]interface{}{
		"img_256_path": img256,
		"img_512_path": img512,
		"image_phash":  phash,
	}).Error
}

func (r *entryRepository) ClearOfficialImage(id uint) error {
	return r.db.Model(&models.Entry{}).Where("id = ?", id).Updates(map[string]interface{}{
		"img_256_path": nil,
		"img_512_path": nil,
		"image_phash":  nil,
	}).Error
}

// AddAlias records a former display name so renamed entries stay findable.
// Re-recording the same alias is a no-op.
func (r *entryRepository) AddAlias(entryID uint, alias string) error {
	err := translateError(r.db.Create(&models.EntryAlias{EntryID: entryID, Alias: alias}).Error)
	if errors.Is(err, ErrDuplicateEntry) {
		return nil
	}
	return err
}

// Delete removes the entry and everything scoped to it in one transaction.
// Rows are removed outright so the (tier, type, biome, canonical name) key
// frees up for resubmission.
func (r *entryRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("entry_id = ?", id).Delete(&models.PendingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("entry_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("entry_id = ?", id).Delete(&models.EntryAlias{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Entry{}, id).Error
	})
}

func (r *entryRepository) List(filter EntryFilter, offset, limit int) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.applyFilter(filter).
		Preload("Type").Preload("Biome").
		Order("name ASC").Offset(offset).Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *entryRepository) Count(filter EntryFilter) (int64, error) {
	var count int64
	err := r.applyFilter(filter).Count(&count).Error
	return count, err
}

func (r *entryRepository) applyFilter(filter EntryFilter) *gorm.DB {
	q := r.db.Model(&models.Entry{})
	if filter.Query != "" {
		cq := "%" + canonical.Canonicalize(filter.Query) + "%"
		raw := "%" + strings.TrimSpace(filter.Query) + "%"
		q = q.Where("canonical_name LIKE ? OR name LIKE ?", cq, raw)
	}
	if filter.Tier > 0 {
		q = q.Where("tier = ?", filter.Tier)
	}
	if filter.TypeID > 0 {
		q = q.Where("type_id = ?", filter.TypeID)
	}
	if filter.BiomeID > 0 {
		q = q.Where("biome_id = ?", filter.BiomeID)
	}
	if filter.Status == models.StatusConfirmed || filter.Status == models.StatusUnconfirmed {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}
