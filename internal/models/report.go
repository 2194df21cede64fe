package models

import "gorm.io/gorm"

// Report rows are the durable record of what was generated; delivery happens
// after the row is persisted and a delivery failure never removes it.
type Report struct {
	gorm.Model

	ReportGroupID uint   `gorm:"not null;index"`
	Prompt        string `gorm:"not null"`
	Text          string `gorm:"not null"`

	// Relationships
	ReportGroup ReportGroup `gorm:"foreignKey:ReportGroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
