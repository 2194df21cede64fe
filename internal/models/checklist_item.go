package models

import "gorm.io/gorm"

type ChecklistItem struct {
	gorm.Model

	TaskID      uint   `gorm:"not null;index"`
	Text        string `gorm:"not null"`
	IsCompleted bool   `gorm:"default:false"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
