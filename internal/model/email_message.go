package model

// EmailMessage is the normalized form of an inbound email, produced by
// the ingestion pipeline from either a JSON payload or a raw RFC 5322
// document. It is never persisted as-is.
type EmailMessage struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	HTML      string `json:"html,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}
