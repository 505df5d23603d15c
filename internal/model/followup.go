package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowUp is one append-only entry of a report's handling history. Rows are
// never updated; the report's notes column only mirrors the latest message.
type FollowUp struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"report_id"`
	AuthorID   *uuid.UUID    `gorm:"type:uuid" json:"author_id"`
	AuthorName string        `gorm:"type:varchar(255)" json:"author_name"`
	OldStatus  *ReportStatus `gorm:"type:varchar(16)" json:"old_status"`
	NewStatus  ReportStatus  `gorm:"type:varchar(16);not null" json:"new_status"`
	Message    string        `gorm:"type:text" json:"message"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (FollowUp) TableName() string {
	return "report_follow_ups"
}

func (f *FollowUp) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
