package model

import "time"

// LocalDestination is stored in ForwardedTo when the matched rule has
// no forward target, i.e. the email is retained locally only.
const LocalDestination = "local"

// ForwardedEmail is an immutable snapshot of an accepted email. Rows
// are hard-deleted: a record past its expiry must actually disappear,
// so no gorm soft-delete column here. MessageID is the dedup key; the
// unique index is what serializes concurrent redeliveries.
type ForwardedEmail struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID   *string   `json:"message_id" gorm:"type:varchar(255);uniqueIndex"`
	RuleID      uint      `json:"rule_id" gorm:"not null;index"`
	FromAddr    string    `json:"from_addr" gorm:"type:varchar(255);not null"`
	ToAddr      string    `json:"to_addr" gorm:"type:varchar(255);not null"`
	Subject     string    `json:"subject" gorm:"type:text"`
	Body        string    `json:"body" gorm:"type:text"`
	HTMLBody    string    `json:"html_body" gorm:"type:text"`
	ForwardedTo string    `json:"forwarded_to" gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"not null;index"`

	Rule *ForwardRule `json:"rule,omitempty" gorm:"foreignKey:RuleID"`
}

// TableName specifies the table name for ForwardedEmail
func (ForwardedEmail) TableName() string {
	return "forwarded_emails"
}
