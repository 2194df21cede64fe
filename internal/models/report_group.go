package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReportGroup is a scheduled delivery target: every IntervalHours the
// generator summarizes the linked projects' activity and sends the result to
// ChatID. ReplayHistory controls whether prior prompt/response pairs seed the
// summarizer session; it is a deployment choice, never mixed per run.
type ReportGroup struct {
	gorm.Model

	Name              string `gorm:"not null"`
	ChatID            string `gorm:"not null"`
	SystemInstruction string
	IntervalHours     int            `gorm:"not null;default:24"`
	ReplayHistory     bool           `gorm:"default:false"`
	GenerationConfig  datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Projects []Project `gorm:"many2many:report_group_projects;constraint:OnDelete:CASCADE"`
	Reports  []Report  `gorm:"foreignKey:ReportGroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
