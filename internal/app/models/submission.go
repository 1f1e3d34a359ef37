package models

import (
	"time"

	"github.com/goccy/go-json"
)

// SubmissionMessage is a submission waiting to be delivered to the collector.
type SubmissionMessage struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	ScreenerType string          `json:"screener_type"`
	FormType     string          `json:"form_type"`
	Body         json.RawMessage `json:"body"`
	FailedCount  int             `json:"failed_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QueuedSubmission is a fetched delivery and its decoded payload.
type QueuedSubmission struct {
	DeliveryTag uint64
	Message     SubmissionMessage
}
