package model

import (
	"time"

	"gorm.io/gorm"
)

// ForwardRule represents a forwarding rule in the database.
// FromAddr is a glob pattern matched against the sender address; the
// remaining predicates are optional and conjunctive.
type ForwardRule struct {
	ID              uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name            string         `json:"name" gorm:"type:varchar(255);not null"`
	Enabled         bool           `json:"enabled" gorm:"default:true"`
	FromAddr        string         `json:"from_addr" gorm:"type:varchar(255);not null"`
	SubjectContains string         `json:"subject_contains" gorm:"type:varchar(255)"`
	BodyContains    string         `json:"body_contains" gorm:"type:varchar(255)"`
	ExcludeWords    string         `json:"exclude_words" gorm:"type:text"`
	ForwardTo       string         `json:"forward_to" gorm:"type:varchar(255)"`
	Description     string         `json:"description" gorm:"type:text"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for ForwardRule
func (ForwardRule) TableName() string {
	return "forward_rules"
}
