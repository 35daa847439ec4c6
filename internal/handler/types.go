package handler

import "time"

// ForwardRuleRequest represents the request structure for creating/updating forward rules
type ForwardRuleRequest struct {
	Name            string `json:"name" binding:"required"`
	FromAddr        string `json:"from_addr" binding:"required"`
	SubjectContains string `json:"subject_contains"`
	BodyContains    string `json:"body_contains"`
	ExcludeWords    string `json:"exclude_words"`
	ForwardTo       string `json:"forward_to"`
	Description     string `json:"description"`
	Enabled         *bool  `json:"enabled"`
}

// ForwardRuleResponse represents the response structure for forward rules
type ForwardRuleResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Enabled         bool      `json:"enabled"`
	FromAddr        string    `json:"from_addr"`
	SubjectContains string    `json:"subject_contains"`
	BodyContains    string    `json:"body_contains"`
	ExcludeWords    string    `json:"exclude_words"`
	ForwardTo       string    `json:"forward_to"`
	Description     string    `json:"description"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EmailResponse represents a retained email in API responses
type EmailResponse struct {
	ID          uint      `json:"id"`
	MessageID   string    `json:"message_id,omitempty"`
	RuleID      uint      `json:"rule_id"`
	FromAddr    string    `json:"from_addr"`
	ToAddr      string    `json:"to_addr"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	HTMLBody    string    `json:"html_body,omitempty"`
	ForwardedTo string    `json:"forwarded_to"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// WebhookResponse reports the outcome of an ingestion request. Status
// distinguishes the benign outcome kinds; emailId/ruleId/forwardedTo
// are only present for processed emails.
type WebhookResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	EmailID     uint   `json:"emailId,omitempty"`
	RuleID      uint   `json:"ruleId,omitempty"`
	ForwardedTo string `json:"forwardedTo,omitempty"`
}

// LoginRequest is the body of the login exchange.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
