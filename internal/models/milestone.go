package models

import "gorm.io/gorm"

type Milestone struct {
	gorm.Model

	ProjectID uint   `gorm:"not null;index"`
	Name      string `gorm:"not null"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks   []Task  `gorm:"foreignKey:MilestoneID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
