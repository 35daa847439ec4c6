package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mail-webhook-relay/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every statement on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.ForwardRule{}, &model.ForwardedEmail{}))
	return New(db)
}

func strptr(s string) *string { return &s }

func retained(messageID string, expiresIn time.Duration) *model.ForwardedEmail {
	email := &model.ForwardedEmail{
		RuleID:      1,
		FromAddr:    "info@x.com",
		ToAddr:      "u@x.com",
		Subject:     "subject",
		Body:        "body",
		ForwardedTo: model.LocalDestination,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(expiresIn),
	}
	if messageID != "" {
		email.MessageID = strptr(messageID)
	}
	return email
}

func TestInsertAssignsID(t *testing.T) {
	s := newTestStore(t)

	email := retained("m1", 30*time.Minute)
	require.NoError(t, s.InsertEmail(email))
	assert.NotZero(t, email.ID)
	assert.True(t, email.ExpiresAt.After(email.CreatedAt))
}

func TestEmailExists(t *testing.T) {
	s := newTestStore(t)

	exists, err := s.EmailExists("m1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.InsertEmail(retained("m1", 30*time.Minute)))

	exists, err = s.EmailExists("m1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMessageIDUniqueness(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertEmail(retained("m1", 30*time.Minute)))

	err := s.InsertEmail(retained("m1", 30*time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// Records without a message id never collide with each other.
	require.NoError(t, s.InsertEmail(retained("", 30*time.Minute)))
	require.NoError(t, s.InsertEmail(retained("", 30*time.Minute)))
}

func TestGetEmailByIDRespectsExpiry(t *testing.T) {
	s := newTestStore(t)

	active := retained("m-active", 30*time.Minute)
	require.NoError(t, s.InsertEmail(active))

	expired := retained("m-expired", -time.Minute)
	require.NoError(t, s.InsertEmail(expired))

	got, err := s.GetEmailByID(active.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, active.ID, got.ID)

	// Expired but not yet swept records are treated as absent.
	got, err = s.GetEmailByID(expired.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.GetEmailByID(99999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListActiveEmailsOrderAndFilter(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		email := retained(fmt.Sprintf("m%d", i), 30*time.Minute)
		email.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.InsertEmail(email))
	}
	require.NoError(t, s.InsertEmail(retained("m-old", -time.Minute)))

	emails, err := s.ListActiveEmails(10, 0)
	require.NoError(t, err)
	require.Len(t, emails, 3)

	// Newest first.
	assert.Equal(t, "m2", *emails[0].MessageID)
	assert.Equal(t, "m1", *emails[1].MessageID)
	assert.Equal(t, "m0", *emails[2].MessageID)

	for _, email := range emails {
		assert.True(t, email.ExpiresAt.After(time.Now()))
	}

	// Pagination.
	emails, err = s.ListActiveEmails(2, 0)
	require.NoError(t, err)
	assert.Len(t, emails, 2)

	emails, err = s.ListActiveEmails(2, 2)
	require.NoError(t, err)
	assert.Len(t, emails, 1)
}

func TestListActiveEmailsClampsLimit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < DefaultPageSize+5; i++ {
		require.NoError(t, s.InsertEmail(retained(fmt.Sprintf("m%d", i), 30*time.Minute)))
	}

	// A zero limit falls back to the default page size.
	emails, err := s.ListActiveEmails(0, 0)
	require.NoError(t, err)
	assert.Len(t, emails, DefaultPageSize)

	// An oversized limit is clamped, not honored.
	emails, err = s.ListActiveEmails(100000, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(emails), MaxPageSize)
}

func TestDeleteExpiredEmails(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.InsertEmail(retained("keep1", 30*time.Minute)))
	require.NoError(t, s.InsertEmail(retained("keep2", 30*time.Minute)))
	require.NoError(t, s.InsertEmail(retained("gone1", -time.Minute)))
	require.NoError(t, s.InsertEmail(retained("gone2", -time.Hour)))

	activeBefore, err := s.CountActiveEmails()
	require.NoError(t, err)

	removed, err := s.DeleteExpiredEmails()
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	activeAfter, err := s.CountActiveEmails()
	require.NoError(t, err)
	assert.Equal(t, activeBefore, activeAfter)

	// Sweep is idempotent.
	removed, err = s.DeleteExpiredEmails()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestDeleteEmailByID(t *testing.T) {
	s := newTestStore(t)

	email := retained("m1", -time.Minute)
	require.NoError(t, s.InsertEmail(email))

	// Delete-by-id ignores expiry.
	deleted, err := s.DeleteEmailByID(email.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteEmailByID(email.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateRule(&model.ForwardRule{Name: "a", FromAddr: "*", Enabled: true}))
	require.NoError(t, s.CreateRule(&model.ForwardRule{Name: "b", FromAddr: "*@x.com", Enabled: false}))

	require.NoError(t, s.InsertEmail(retained("m1", 30*time.Minute)))
	require.NoError(t, s.InsertEmail(retained("m2", -time.Minute)))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEmails)
	assert.Equal(t, int64(1), stats.ActiveEmails)
	assert.Equal(t, int64(2), stats.TotalRules)
	assert.Equal(t, int64(1), stats.EnabledRules)
}

func TestEnabledRulesOrderedByInsertion(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateRule(&model.ForwardRule{Name: "first", FromAddr: "*@x.com", Enabled: true}))
	require.NoError(t, s.CreateRule(&model.ForwardRule{Name: "disabled", FromAddr: "*", Enabled: false}))
	require.NoError(t, s.CreateRule(&model.ForwardRule{Name: "second", FromAddr: "*", Enabled: true}))

	rules, err := s.GetEnabledRules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "first", rules[0].Name)
	assert.Equal(t, "second", rules[1].Name)
	assert.True(t, rules[0].ID < rules[1].ID)
}

func TestRuleLifecycle(t *testing.T) {
	s := newTestStore(t)

	rule := &model.ForwardRule{Name: "codes", FromAddr: "*@x.com", Enabled: true}
	require.NoError(t, s.CreateRule(rule))
	require.NotZero(t, rule.ID)

	got, err := s.GetRuleByID(rule.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "codes", got.Name)

	got.SubjectContains = "access code"
	require.NoError(t, s.UpdateRule(got))

	got, err = s.GetRuleByID(rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "access code", got.SubjectContains)

	require.NoError(t, s.SetRuleEnabled(rule.ID, false))
	rules, err := s.GetEnabledRules()
	require.NoError(t, err)
	assert.Empty(t, rules)

	require.NoError(t, s.DeleteRule(rule.ID))
	got, err = s.GetRuleByID(rule.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
