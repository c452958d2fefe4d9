package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingImage is a contributor-uploaded candidate awaiting an admin
// decision. Any number may coexist per entry; they only leave the table by
// promotion, purge, or cascade from an entry delete. There is no automatic
// expiry.
type PendingImage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UUID       string    `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`
	EntryID    uint      `gorm:"index;not null" json:"entry_id"`
	Entry      *Entry    `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"entry,omitempty"`
	Img256Path string    `gorm:"type:varchar(255);not null" json:"img_256_path"`
	Img512Path string    `gorm:"type:varchar(255);not null" json:"img_512_path"`
	ImagePHash string    `gorm:"type:char(16)" json:"image_phash"`
	UploaderIP string    `gorm:"type:varchar(45);default:null" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *PendingImage) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	return nil
}
