package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	MilestoneID uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'To Do'"`
	AssigneeID  *uint  `gorm:"index"`
	StartDate   time.Time
	DueDate     time.Time
	Deadline    time.Time

	// Relationships
	Milestone        Milestone       `gorm:"foreignKey:MilestoneID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee         *User           `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Checklist        []ChecklistItem `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments         []Comment       `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	DependenciesFrom []Dependency    `gorm:"foreignKey:FromTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	DependenciesTo   []Dependency    `gorm:"foreignKey:ToTaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tags             []TaskTag       `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
