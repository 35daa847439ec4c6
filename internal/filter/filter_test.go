package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mail-webhook-relay/internal/model"
)

func TestMatchAddressWildcard(t *testing.T) {
	addresses := []string{
		"a@b.com",
		"info@account.netflix.com",
		"",
		"weird <not-an-address>",
	}
	for _, addr := range addresses {
		assert.True(t, MatchAddress(addr, "*"), "address %q should match *", addr)
		assert.True(t, MatchAddress(addr, "*@*"), "address %q should match *@*", addr)
	}
}

func TestMatchAddressDomainSuffix(t *testing.T) {
	assert.True(t, MatchAddress("info@x.com", "*@x.com"))
	assert.True(t, MatchAddress("a.b.c@x.com", "*@x.com"))
	assert.False(t, MatchAddress("info@y.com", "*@x.com"))
	assert.False(t, MatchAddress("info@x.com.evil.org", "*@x.com"))
	// '.' in the pattern must be literal, not "any character"
	assert.False(t, MatchAddress("info@xacom", "*@x.com"))
}

func TestMatchAddressCaseInsensitive(t *testing.T) {
	assert.True(t, MatchAddress("A@B.com", "*@b.com"))
	assert.True(t, MatchAddress("user@EXAMPLE.COM", "*@example.com"))
	assert.True(t, MatchAddress("user@example.com", "USER@example.com"))
}

func TestMatchAddressExactAndInfix(t *testing.T) {
	assert.True(t, MatchAddress("alerts@ops.io", "alerts@ops.io"))
	assert.False(t, MatchAddress("alerts@ops.io", "alerts@ops.io2"))
	assert.True(t, MatchAddress("no-reply@mail.github.com", "*@*.github.com"))
	assert.False(t, MatchAddress("no-reply@github.com", "*@*.github.com"))
}

func TestMatchAddressMetacharactersEscaped(t *testing.T) {
	// A pattern containing regexp syntax is treated literally.
	assert.False(t, MatchAddress("ab@x.com", "a+b@x.com"))
	assert.True(t, MatchAddress("a+b@x.com", "a+b@x.com"))
	assert.False(t, MatchAddress("a@x.com", "(a|b)@x.com"))
}

func TestRuleMatchesConjunction(t *testing.T) {
	msg := model.EmailMessage{
		From:    "info@account.netflix.com",
		To:      "u@x.com",
		Subject: "Your temporary access code",
		Body:    "123456",
	}

	rule := model.ForwardRule{
		FromAddr:        "*@account.netflix.com",
		SubjectContains: "temporary access code",
	}
	assert.True(t, RuleMatches(msg, rule))

	rule.SubjectContains = "password reset"
	assert.False(t, RuleMatches(msg, rule))

	rule.SubjectContains = ""
	rule.BodyContains = "123456"
	assert.True(t, RuleMatches(msg, rule))

	rule.BodyContains = "654321"
	assert.False(t, RuleMatches(msg, rule))
}

func TestRuleMatchesCaseInsensitiveSubstrings(t *testing.T) {
	msg := model.EmailMessage{
		From:    "billing@shop.example",
		Subject: "INVOICE #42",
		Body:    "Total Due: 10 EUR",
	}
	rule := model.ForwardRule{
		FromAddr:        "*",
		SubjectContains: "invoice",
		BodyContains:    "total due",
	}
	assert.True(t, RuleMatches(msg, rule))
}

func TestExcludeWordsOverrideInclusion(t *testing.T) {
	rule := model.ForwardRule{
		FromAddr:        "*",
		SubjectContains: "code",
		ExcludeWords:    "code",
	}
	msg := model.EmailMessage{
		From:    "a@b.com",
		Subject: "your code is ready",
		Body:    "whatever",
	}
	// The subject predicate passes, but the same word in the exclude
	// list disqualifies the rule.
	assert.False(t, RuleMatches(msg, rule))
}

func TestExcludeWordsListHandling(t *testing.T) {
	rule := model.ForwardRule{
		FromAddr:     "*",
		ExcludeWords: " spam , , PROMO ,",
	}

	assert.False(t, RuleMatches(model.EmailMessage{From: "a@b.com", Subject: "big promo today"}, rule))
	assert.False(t, RuleMatches(model.EmailMessage{From: "a@b.com", Body: "this is Spam"}, rule))
	assert.True(t, RuleMatches(model.EmailMessage{From: "a@b.com", Subject: "regular mail"}, rule))
}

func TestFirstMatchWins(t *testing.T) {
	msg := model.EmailMessage{From: "info@x.com", Subject: "hello"}

	rules := []model.ForwardRule{
		{ID: 1, FromAddr: "*@y.com"},
		{ID: 2, FromAddr: "*@x.com", ForwardTo: "first@dest.com"},
		{ID: 3, FromAddr: "*", ForwardTo: "second@dest.com"},
	}

	matched := FirstMatch(msg, rules)
	assert.NotNil(t, matched)
	assert.Equal(t, uint(2), matched.ID)
}

func TestFirstMatchNone(t *testing.T) {
	msg := model.EmailMessage{From: "spam@evil.com"}
	rules := []model.ForwardRule{
		{ID: 1, FromAddr: "*@account.netflix.com", SubjectContains: "temporary access code"},
	}
	assert.Nil(t, FirstMatch(msg, rules))

	assert.Nil(t, FirstMatch(msg, nil))
}
