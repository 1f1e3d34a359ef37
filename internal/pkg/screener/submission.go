package screener

import (
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form used in submission payloads.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Submission is the payload sent to the external collector.
type Submission struct {
	FormType             string              `json:"form_type"`
	Timestamp            string              `json:"timestamp"`
	RoutingOutcome       Outcome             `json:"routing_outcome"`
	RoutingReason        string              `json:"routing_reason,omitempty"`
	Responses            map[string]string   `json:"responses"`
	MultiSelectResponses map[string][]string `json:"multi_select_responses,omitempty"`
}

// BuildSubmission assembles the collector payload from the current answers.
// Fields are keyed by question name when one is set. Checkbox answers appear
// comma-joined in responses and as lists in multi_select_responses; the
// routing reason is only carried for FLAG and DISQUALIFY.
func BuildSubmission(s *Screener, p Profile, store *ResponseStore, d Decision, at time.Time) Submission {
	sub := Submission{
		FormType:       p.FormType,
		Timestamp:      at.UTC().Format(TimestampLayout),
		RoutingOutcome: d.Outcome,
		Responses:      make(map[string]string),
	}
	if d.Outcome == OutcomeFlag || d.Outcome == OutcomeDisqualify {
		sub.RoutingReason = d.Reason
	}

	for _, q := range s.questions {
		values := store.lookup(q.ID)
		if q.InputType.IsMultiSelect() {
			if sub.MultiSelectResponses == nil {
				sub.MultiSelectResponses = make(map[string][]string)
			}
			selected := make([]string, len(values))
			copy(selected, values)
			sub.MultiSelectResponses[q.Key()] = selected
		}
		if len(values) > 0 {
			sub.Responses[q.Key()] = strings.Join(values, ",")
		}
	}
	return sub
}
