package screener

// Outcome is the triage result of one evaluation pass.
type Outcome string

const (
	OutcomeProceed    Outcome = "PROCEED"
	OutcomeFlag       Outcome = "FLAG"
	OutcomeDisqualify Outcome = "DISQUALIFY"
)

// SafetyCriticalReason is the reason sentinel that switches the respondent to
// crisis-resource copy instead of the generic disqualification text.
const SafetyCriticalReason = "DEPRESSION_SPECIAL_MESSAGE"

// Severity orders outcomes: DISQUALIFY > FLAG > PROCEED.
func (o Outcome) Severity() int {
	switch o {
	case OutcomeDisqualify:
		return 2
	case OutcomeFlag:
		return 1
	}
	return 0
}

func (o Outcome) Valid() bool {
	return o == OutcomeProceed || o == OutcomeFlag || o == OutcomeDisqualify
}

// Decision is the single outcome of an evaluation pass.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
	RuleID  string  `json:"rule_id,omitempty"`
}

func (d Decision) SafetyCritical() bool {
	return d.Outcome == OutcomeDisqualify && d.Reason == SafetyCriticalReason
}

// Proceed is the decision when nothing fires.
func Proceed() Decision {
	return Decision{Outcome: OutcomeProceed}
}
