package models

import "gorm.io/gorm"

// Dependency is a directed edge between two tasks. Cycles are not rejected
// on write; callers that care use deps.FindCycles.
type Dependency struct {
	gorm.Model

	FromTaskID uint   `gorm:"not null;index"`
	ToTaskID   uint   `gorm:"not null;index"`
	Type       string `gorm:"not null"` // "FS", "FF", "SS", "SF"

	// Relationships
	FromTask Task `gorm:"foreignKey:FromTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	ToTask   Task `gorm:"foreignKey:ToTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
