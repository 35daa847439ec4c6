package store

import (
	"fmt"

	"gorm.io/gorm"

	"mail-webhook-relay/internal/model"
)

// CreateRule persists a new forwarding rule and assigns its ID.
func (s *Store) CreateRule(rule *model.ForwardRule) error {
	if result := s.db.Create(rule); result.Error != nil {
		return fmt.Errorf("failed to create rule: %w", result.Error)
	}
	return nil
}

// GetAllRules returns every rule, enabled or not, in insertion order.
func (s *Store) GetAllRules() ([]model.ForwardRule, error) {
	var rules []model.ForwardRule
	result := s.db.Order("id ASC").Find(&rules)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get rules: %w", result.Error)
	}
	return rules, nil
}

// GetEnabledRules returns the rules the selector evaluates, in
// ascending insertion order. The order is load-bearing: first match
// wins, and the stored rule_id makes it observable.
func (s *Store) GetEnabledRules() ([]model.ForwardRule, error) {
	var rules []model.ForwardRule
	result := s.db.Where("enabled = ?", true).Order("id ASC").Find(&rules)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get enabled rules: %w", result.Error)
	}
	return rules, nil
}

// GetRuleByID returns a rule by ID, or nil when it does not exist.
func (s *Store) GetRuleByID(id uint) (*model.ForwardRule, error) {
	var rule model.ForwardRule
	result := s.db.First(&rule, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch rule: %w", result.Error)
	}
	return &rule, nil
}

// UpdateRule saves changes to an existing rule.
func (s *Store) UpdateRule(rule *model.ForwardRule) error {
	if result := s.db.Save(rule); result.Error != nil {
		return fmt.Errorf("failed to update rule: %w", result.Error)
	}
	return nil
}

// DeleteRule removes a rule. Retained emails keep their rule_id
// snapshot; deleting a rule never cascades to emails.
func (s *Store) DeleteRule(id uint) error {
	if result := s.db.Delete(&model.ForwardRule{}, id); result.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", result.Error)
	}
	return nil
}

// SetRuleEnabled flips the enabled flag on a rule.
func (s *Store) SetRuleEnabled(id uint, enabled bool) error {
	result := s.db.Model(&model.ForwardRule{}).Where("id = ?", id).Update("enabled", enabled)
	if result.Error != nil {
		return fmt.Errorf("failed to update rule enabled flag: %w", result.Error)
	}
	return nil
}
