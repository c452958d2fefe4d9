package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/craftatlas/craftatlas/app/models"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.Preload("Entry").First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListOpen(offset, limit int) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Preload("Entry").
		Where("status = ?", models.ReportStatusOpen).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&reports).Error
	return reports, err
}

// Close marks the report resolved. Reports are never deleted by this path.
func (r *reportRepository) Close(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Report{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      models.ReportStatusClosed,
		"resolved_at": &now,
	}).Error
}
