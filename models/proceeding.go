package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the textual date format accepted for proceeding dates (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Proceeding is a dated entry that belongs to exactly one Case
type Proceeding struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`

	ProceedingDate time.Time  `gorm:"not null;index" json:"proceeding_date"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	TentativeDate  *time.Time `json:"tentative_date,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Proceeding) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Proceeding model
func (Proceeding) TableName() string {
	return "proceedings"
}

// ProceedingDateString formats the proceeding date for forms and reports
func (p *Proceeding) ProceedingDateString() string {
	return p.ProceedingDate.Format(DateLayout)
}

// TentativeDateString formats the tentative date, or "" when none is set
func (p *Proceeding) TentativeDateString() string {
	if p.TentativeDate == nil {
		return ""
	}
	return p.TentativeDate.Format(DateLayout)
}
