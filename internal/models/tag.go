package models

import "gorm.io/gorm"

type Tag struct {
	gorm.Model

	Name  string `gorm:"not null"`
	Color string `gorm:"not null"`
}

type TaskTag struct {
	gorm.Model

	TaskID uint `gorm:"not null;index"`
	TagID  uint `gorm:"not null;index"`

	// Relationships
	Task Task `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Tag  Tag  `gorm:"foreignKey:TagID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
