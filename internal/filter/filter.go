// Package filter decides which forwarding rule, if any, applies to an
// inbound email. All predicates are pure and case-insensitive; a rule
// matches only when every configured predicate passes.
package filter

import (
	"strings"

	"github.com/sirupsen/logrus"

	"mail-webhook-relay/internal/model"
)

// RuleMatches reports whether a single rule accepts the message. The
// predicate chain short-circuits: sender pattern, subject substring,
// body substring, then exclude words. Any exclude word present in the
// subject or body disqualifies the rule regardless of the other
// predicates.
func RuleMatches(msg model.EmailMessage, rule model.ForwardRule) bool {
	if !MatchAddress(msg.From, rule.FromAddr) {
		return false
	}

	if rule.SubjectContains != "" {
		if !strings.Contains(strings.ToLower(msg.Subject), strings.ToLower(rule.SubjectContains)) {
			return false
		}
	}

	if rule.BodyContains != "" {
		if !strings.Contains(strings.ToLower(msg.Body), strings.ToLower(rule.BodyContains)) {
			return false
		}
	}

	if rule.ExcludeWords != "" {
		content := strings.ToLower(msg.Subject) + " " + strings.ToLower(msg.Body)
		for _, word := range strings.Split(rule.ExcludeWords, ",") {
			word = strings.ToLower(strings.TrimSpace(word))
			if word == "" {
				continue
			}
			if strings.Contains(content, word) {
				logrus.Debugf("Rule %d excluded by word %q", rule.ID, word)
				return false
			}
		}
	}

	return true
}

// FirstMatch returns the first rule in the supplied order that matches
// the message, or nil. The store supplies rules in ascending insertion
// order, so only one rule ever applies per message even when several
// would match.
func FirstMatch(msg model.EmailMessage, rules []model.ForwardRule) *model.ForwardRule {
	for i := range rules {
		if RuleMatches(msg, rules[i]) {
			return &rules[i]
		}
	}
	return nil
}
