package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxClientNameLength is the longest client name a case accepts (in characters)
const MaxClientNameLength = 100

// Case represents a tracked client matter
type Case struct {
	ID          string    `gorm:"type:uuid;primarykey" json:"id"`
	DateCreated time.Time `gorm:"not null;index;<-:create" json:"date_created"`
	UpdatedAt   time.Time `json:"updated_at"`

	ClientName string `gorm:"size:100;not null" json:"client_name"`
	CaseStatus string `gorm:"type:text;not null" json:"case_status"`

	// Stored names in the file store, nil when no document was accepted
	CaseFile          *string `gorm:"size:200" json:"case_file,omitempty"`
	InterimOrdersFile *string `gorm:"size:200" json:"interim_orders_file,omitempty"`

	Proceedings []Proceeding `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"proceedings,omitempty"`
}

// BeforeCreate hook to generate UUID and set DateCreated
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.DateCreated.IsZero() {
		c.DateCreated = time.Now().UTC()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// HasCaseFile reports whether a case document is attached
func (c *Case) HasCaseFile() bool {
	return c.CaseFile != nil && *c.CaseFile != ""
}

// HasInterimOrdersFile reports whether an interim orders document is attached
func (c *Case) HasInterimOrdersFile() bool {
	return c.InterimOrdersFile != nil && *c.InterimOrdersFile != ""
}
