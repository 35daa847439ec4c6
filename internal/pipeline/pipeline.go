// Package pipeline implements the ingestion path: normalize an inbound
// payload, deduplicate it, select the first matching forwarding rule,
// and persist a retention snapshot.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mail-webhook-relay/internal/filter"
	"mail-webhook-relay/internal/mailparse"
	"mail-webhook-relay/internal/metrics"
	"mail-webhook-relay/internal/model"
	"mail-webhook-relay/internal/store"
)

// Outcome discriminates the benign results of an ingestion call. None
// of these are errors: callers must branch on the outcome kind.
type Outcome string

const (
	// OutcomeProcessed means a rule matched and a snapshot was stored.
	OutcomeProcessed Outcome = "processed"
	// OutcomeAlreadyProcessed means the message id was seen before.
	OutcomeAlreadyProcessed Outcome = "already_processed"
	// OutcomeNoRules means no enabled rules exist.
	OutcomeNoRules Outcome = "no_rules_configured"
	// OutcomeNoMatch means no enabled rule accepted the message.
	OutcomeNoMatch Outcome = "no_match"
)

// Result reports what an ingestion call did. EmailID, RuleID and
// ForwardedTo are only set for OutcomeProcessed.
type Result struct {
	Outcome     Outcome
	EmailID     uint
	RuleID      uint
	ForwardedTo string
	// Swept is the number of expired records removed by the
	// opportunistic sweep that precedes processing.
	Swept int64
}

// ErrMissingAddress marks a payload with an empty from or to address
// after normalization.
var ErrMissingAddress = errors.New("missing from or to address")

// ErrInvalidPayload marks a JSON payload that could not be decoded.
var ErrInvalidPayload = errors.New("invalid json payload")

// Pipeline processes inbound emails. It holds no mutable state of its
// own; all shared state lives behind the store.
type Pipeline struct {
	store     *store.Store
	retention time.Duration
	metrics   *metrics.Metrics
}

// New creates an ingestion pipeline with the given retention window.
func New(s *store.Store, retention time.Duration, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		store:     s,
		retention: retention,
		metrics:   m,
	}
}

// Sweep removes all expired retained emails and returns the count.
func (p *Pipeline) Sweep() (int64, error) {
	removed, err := p.store.DeleteExpiredEmails()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		p.metrics.SweptEmails.Add(float64(removed))
		logrus.Infof("Swept %d expired emails", removed)
	}
	return removed, nil
}

// Ingest runs the full ingestion path for one payload. The content
// type selects the normalization branch: application/json, or raw
// RFC 5322 otherwise.
func (p *Pipeline) Ingest(payload []byte, contentType string) (*Result, error) {
	start := time.Now()
	defer func() {
		p.metrics.ProcessingTime.Observe(time.Since(start).Seconds())
	}()
	p.metrics.IngestCount.Inc()

	// Cleanup piggybacks on request traffic; there is no background
	// timer unless the sweeper is enabled. A failed sweep must not
	// block ingestion.
	swept, err := p.Sweep()
	if err != nil {
		logrus.Errorf("Opportunistic sweep failed: %v", err)
	}

	msg, err := p.normalize(payload, contentType)
	if err != nil {
		p.metrics.IngestFailures.Inc()
		return nil, err
	}

	if msg.From == "" || msg.To == "" {
		p.metrics.IngestFailures.Inc()
		return nil, ErrMissingAddress
	}

	logrus.Infof("Processing email from %s to %s", msg.From, msg.To)

	if msg.MessageID != "" {
		exists, err := p.store.EmailExists(msg.MessageID)
		if err != nil {
			p.metrics.IngestFailures.Inc()
			return nil, fmt.Errorf("failed to check for duplicate: %w", err)
		}
		if exists {
			logrus.Infof("Email %s already processed", msg.MessageID)
			p.metrics.DuplicateCount.Inc()
			return &Result{Outcome: OutcomeAlreadyProcessed, Swept: swept}, nil
		}
	}

	rules, err := p.store.GetEnabledRules()
	if err != nil {
		p.metrics.IngestFailures.Inc()
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}
	if len(rules) == 0 {
		logrus.Warn("No forwarding rules configured")
		return &Result{Outcome: OutcomeNoRules, Swept: swept}, nil
	}

	rule := filter.FirstMatch(*msg, rules)
	if rule == nil {
		logrus.Infof("No matching rule found for email from %s", msg.From)
		p.metrics.NoMatchCount.Inc()
		return &Result{Outcome: OutcomeNoMatch, Swept: swept}, nil
	}

	forwardedTo := rule.ForwardTo
	if forwardedTo == "" {
		forwardedTo = model.LocalDestination
	}

	now := time.Now()
	email := &model.ForwardedEmail{
		RuleID:      rule.ID,
		FromAddr:    msg.From,
		ToAddr:      msg.To,
		Subject:     msg.Subject,
		Body:        msg.Body,
		HTMLBody:    msg.HTML,
		ForwardedTo: forwardedTo,
		CreatedAt:   now,
		ExpiresAt:   now.Add(p.retention),
	}
	if msg.MessageID != "" {
		id := msg.MessageID
		email.MessageID = &id
	}

	if err := p.store.InsertEmail(email); err != nil {
		// Two concurrent deliveries of the same message id race past
		// the exists check; the unique index decides the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logrus.Infof("Email %s inserted concurrently, treating as duplicate", msg.MessageID)
			p.metrics.DuplicateCount.Inc()
			return &Result{Outcome: OutcomeAlreadyProcessed, Swept: swept}, nil
		}
		p.metrics.IngestFailures.Inc()
		return nil, err
	}

	p.metrics.MatchCount.Inc()
	logrus.Infof("Email saved with ID %d via rule %d, forwarded to %s", email.ID, rule.ID, forwardedTo)

	return &Result{
		Outcome:     OutcomeProcessed,
		EmailID:     email.ID,
		RuleID:      rule.ID,
		ForwardedTo: forwardedTo,
		Swept:       swept,
	}, nil
}

// normalize branches on the declared content type and produces the
// canonical message record.
func (p *Pipeline) normalize(payload []byte, contentType string) (*model.EmailMessage, error) {
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		var msg model.EmailMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return &msg, nil
	}
	return mailparse.Parse(payload)
}
