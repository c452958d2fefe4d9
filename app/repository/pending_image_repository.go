package repository

import (
	"gorm.io/gorm"

	"github.com/craftatlas/craftatlas/app/models"
)

type pendingImageRepository struct {
	db *gorm.DB
}

// NewPendingImageRepository creates a new pending-image repository instance.
func NewPendingImageRepository(db *gorm.DB) PendingImageRepository {
	return &pendingImageRepository{db: db}
}

func (r *pendingImageRepository) Create(pending *models.PendingImage) error {
	return r.db.Create(pending).Error
}

func (r *pendingImageRepository) GetByUUID(uuid string) (*models.PendingImage, error) {
	var pending models.PendingImage
	err := r.db.Where("uuid = ?", uuid).First(&pending).Error
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *pendingImageRepository) ListByEntry(entryID uint) ([]models.PendingImage, error) {
	var pendings []models.PendingImage
	err := r.db.Where("entry_id = ?", entryID).Order("created_at ASC").Find(&pendings).Error
	return pendings, err
}

func (r *pendingImageRepository) Delete(id uint) error {
	return r.db.Delete(&models.PendingImage{}, id).Error
}

// PurgeByEntry removes every pending candidate for the entry. The removed
// rows come back so the caller can move their files to quarantine.
func (r *pendingImageRepository) PurgeByEntry(entryID uint) ([]models.PendingImage, error) {
	var pendings []models.PendingImage
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", entryID).Find(&pendings).Error; err != nil {
			return err
		}
		return tx.Where("entry_id = ?", entryID).Delete(&models.PendingImage{}).Error
	})
	if err != nil {
		return nil, err
	}
	return pendings, nil
}
