package responses

type Decision struct {
	Outcome        string `json:"outcome"`
	Reason         string `json:"reason,omitempty"`
	RuleID         string `json:"rule_id,omitempty"`
	SafetyCritical bool   `json:"safety_critical,omitempty"`
}

type Metrics struct {
	Age *int     `json:"age,omitempty"`
	BMI *float64 `json:"bmi,omitempty"`
}

// Session is the state of a screening session after its latest pass.
type Session struct {
	SessionID         string              `json:"session_id"`
	ScreenerType      string              `json:"screener_type"`
	Responses         map[string][]string `json:"responses"`
	VisibleQuestions  []string            `json:"visible_questions"`
	RequiredQuestions []string            `json:"required_questions"`
	ClearedQuestions  []string            `json:"cleared_questions,omitempty"`
	Metrics           Metrics             `json:"metrics"`
	Decision          Decision            `json:"decision"`
	// Stop is set once the respondent is disqualified and the host should
	// end the flow early.
	Stop bool `json:"stop"`
}

type Message struct {
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	Resources      []string `json:"resources,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

type Redirect struct {
	URL      string            `json:"redirect_url"`
	Category string            `json:"category"`
	Outcome  string            `json:"outcome"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Signal struct {
	Category    string `json:"category"`
	Outcome     string `json:"outcome"`
	RedirectURL string `json:"redirectUrl"`
}

// Submission is what the host page receives once the screening is submitted.
type Submission struct {
	SessionID string    `json:"session_id"`
	Decision  Decision  `json:"decision"`
	Message   Message   `json:"message"`
	Redirect  *Redirect `json:"redirect,omitempty"`
	Signal    *Signal   `json:"signal,omitempty"`
	Queued    bool      `json:"queued"`
}
