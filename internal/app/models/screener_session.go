package models

import "time"

// ScreenerSession is the stored snapshot of one respondent's screening.
// Evaluations are not stored; they are recomputed from Responses.
type ScreenerSession struct {
	SessionID    string              `json:"session_id"`
	ScreenerType string              `json:"screener_type"`
	Responses    map[string][]string `json:"responses"`
	SubmittedAt  *time.Time          `json:"submitted_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (s *ScreenerSession) Submitted() bool {
	return s.SubmittedAt != nil
}
