package models

import (
	"time"

	"gorm.io/gorm"
)

// Report targets and reasons. A report either flags the entry's data or
// its published official image.
const (
	ReportTargetEntry         = "entry"
	ReportTargetOfficialImage = "official_image"

	ReportReasonIncorrect       = "incorrect"
	ReportReasonPolicyViolation = "policy_violation"

	ReportStatusOpen   = "open"
	ReportStatusClosed = "closed"
)

// Report is a user flag against an entry or its official image. Reports
// are closed by admin action and never auto-deleted; they only disappear
// when the owning entry cascades away.
type Report struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EntryID    uint           `gorm:"index;not null" json:"entry_id"`
	Entry      *Entry         `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"entry,omitempty"`
	Target     string         `gorm:"type:varchar(32);not null" json:"target"`
	Reason     string         `gorm:"type:varchar(32);not null" json:"reason"`
	Status     string         `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Notes      string         `gorm:"type:text" json:"notes"`
	ReporterIP string         `gorm:"type:varchar(45);default:null" json:"-"`
	ResolvedAt *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidTarget reports whether t is a known report target.
func ValidTarget(t string) bool {
	return t == ReportTargetEntry || t == ReportTargetOfficialImage
}

// ValidReason reports whether r is a known report reason.
func ValidReason(r string) bool {
	return r == ReportReasonIncorrect || r == ReportReasonPolicyViolation
}
