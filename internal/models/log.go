package models

import "gorm.io/gorm"

// Log is append-only: rows are created by taskops and the log endpoints and
// never updated afterwards.
type Log struct {
	gorm.Model

	ProjectID uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null;index"`
	TaskID    *uint  `gorm:"index"`
	Message   string `gorm:"not null"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Task    *Task   `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
