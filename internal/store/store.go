// Package store is the persistence layer for forwarding rules and
// retained emails. A record is "active" while its expiry lies in the
// future; every read re-evaluates that predicate against the clock, so
// expired-but-not-yet-swept rows are invisible to callers.
package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"mail-webhook-relay/internal/model"
)

// MaxPageSize bounds the list page size requested by callers.
const MaxPageSize = 100

// DefaultPageSize is used when the caller does not request a limit.
const DefaultPageSize = 20

// Stats holds aggregate counters for the dashboard and health surface.
type Stats struct {
	TotalEmails  int64 `json:"totalEmails"`
	ActiveEmails int64 `json:"activeEmails"`
	TotalRules   int64 `json:"totalRules"`
	EnabledRules int64 `json:"enabledRules"`
}

// Store wraps the database handle. It is constructed once and passed
// into the pipeline and handlers; there is no process-wide instance.
type Store struct {
	db *gorm.DB
}

// New creates a new store around an initialized gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InsertEmail persists a retained email snapshot and assigns its ID.
// A duplicate message_id surfaces as gorm.ErrDuplicatedKey; the
// unique index is the race guard for concurrent redeliveries.
func (s *Store) InsertEmail(email *model.ForwardedEmail) error {
	if result := s.db.Create(email); result.Error != nil {
		return fmt.Errorf("failed to insert email: %w", result.Error)
	}
	return nil
}

// EmailExists checks whether a message with the given external message
// ID has already been retained.
func (s *Store) EmailExists(messageID string) (bool, error) {
	var count int64
	result := s.db.Model(&model.ForwardedEmail{}).Where("message_id = ?", messageID).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("database error checking message id: %w", result.Error)
	}
	return count > 0, nil
}

// GetEmailByID returns a retained email if it is still active, or nil.
func (s *Store) GetEmailByID(id uint) (*model.ForwardedEmail, error) {
	var email model.ForwardedEmail
	result := s.db.Where("id = ? AND expires_at > ?", id, time.Now()).First(&email)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch email: %w", result.Error)
	}
	return &email, nil
}

// ListActiveEmails returns non-expired emails ordered newest first.
// The limit is clamped to MaxPageSize to keep responses bounded.
func (s *Store) ListActiveEmails(limit, offset int) ([]model.ForwardedEmail, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var emails []model.ForwardedEmail
	result := s.db.Where("expires_at > ?", time.Now()).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&emails)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list emails: %w", result.Error)
	}
	return emails, nil
}

// CountActiveEmails returns the number of non-expired emails.
func (s *Store) CountActiveEmails() (int64, error) {
	var count int64
	result := s.db.Model(&model.ForwardedEmail{}).Where("expires_at > ?", time.Now()).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count emails: %w", result.Error)
	}
	return count, nil
}

// DeleteExpiredEmails removes every email whose expiry has passed and
// returns the number of rows removed.
func (s *Store) DeleteExpiredEmails() (int64, error) {
	result := s.db.Where("expires_at <= ?", time.Now()).Delete(&model.ForwardedEmail{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired emails: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteEmailByID removes an email unconditionally, expired or not.
// It reports whether a row was actually removed.
func (s *Store) DeleteEmailByID(id uint) (bool, error) {
	result := s.db.Delete(&model.ForwardedEmail{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete email: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetStats returns aggregate counters across emails and rules.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}
	now := time.Now()

	if err := s.db.Model(&model.ForwardedEmail{}).Count(&stats.TotalEmails).Error; err != nil {
		return nil, fmt.Errorf("failed to count emails: %w", err)
	}
	if err := s.db.Model(&model.ForwardedEmail{}).Where("expires_at > ?", now).Count(&stats.ActiveEmails).Error; err != nil {
		return nil, fmt.Errorf("failed to count active emails: %w", err)
	}
	if err := s.db.Model(&model.ForwardRule{}).Count(&stats.TotalRules).Error; err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}
	if err := s.db.Model(&model.ForwardRule{}).Where("enabled = ?", true).Count(&stats.EnabledRules).Error; err != nil {
		return nil, fmt.Errorf("failed to count enabled rules: %w", err)
	}

	return stats, nil
}
