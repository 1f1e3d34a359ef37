package screener

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Message is the copy shown to the respondent for a decision.
type Message struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Resources []string `json:"resources,omitempty"`
	// Recommendation is the "talk to your doctor" line. It is never set for
	// the safety-critical reason.
	Recommendation string `json:"recommendation,omitempty"`
}

// MessageData is available to reason templates, e.g.
// "Your BMI of {{ .BMI | printf \"%.1f\" }} is below {{ .MinimumBMI }}.".
type MessageData struct {
	ScreenerType string
	Category     string
	Reason       string
	Age          int
	HasAge       bool
	BMI          float64
	HasBMI       bool
	MinimumBMI   float64
}

// NewMessageData collects the template inputs of an evaluation.
func NewMessageData(p Profile, m Metrics) MessageData {
	data := MessageData{
		ScreenerType: p.ScreenerType,
		Category:     p.Category,
		MinimumBMI:   p.MinimumBMI,
	}
	if m.Age != nil {
		data.Age, data.HasAge = *m.Age, true
	}
	if m.BMI != nil {
		data.BMI, data.HasBMI = *m.BMI, true
	}
	return data
}

const (
	titleNotEligible   = "Not Eligible for Treatment"
	titleReview        = "Additional Review Required"
	titleEligible      = "You're Eligible to Continue"
	physicianRecommend = "Please talk with your doctor about other treatment options that may be right for you."
)

var safetyResources = []string{
	"Call or text 988 to connect with the Suicide & Crisis Lifeline.",
	"If you are in immediate danger of harming yourself, call 911 or go to the nearest Emergency Department.",
}

var (
	disqualifyBody = mustTemplate("disqualify",
		`Thank you for starting your assessment - unfortunately, you don't qualify because {{ .Reason | trim }}`)
	flagBody = mustTemplate("flag",
		`Thank you for completing your assessment. {{ .Reason | trim }} A clinician will review your answers before treatment is confirmed.`)
	proceedBody = mustTemplate("proceed",
		`Thank you for completing your assessment. You can continue to the next step{{ if .Category }} for {{ .Category | lower }}{{ end }}.`)
	safetyBody = mustTemplate("safety", strings.Join([]string{
		"We care about your safety.",
		"Because you indicated that you are feeling depressed or having thoughts of suicide, you are not eligible to continue with this program/medication at this time.",
		"You are not alone, and help is available.",
		"Please reach out to a trusted family member, friend, or mental health professional today.",
		"Your wellbeing is our top priority.",
	}, "\n\n"))
)

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text))
}

// RenderMessage produces the respondent-facing copy for d. Reasons may be
// templates over MessageData; a reason that fails to render is used verbatim.
func RenderMessage(d Decision, data MessageData) (Message, error) {
	if d.SafetyCritical() {
		body, err := execute(safetyBody, data)
		if err != nil {
			return Message{}, err
		}
		resources := make([]string, len(safetyResources))
		copy(resources, safetyResources)
		return Message{Title: titleNotEligible, Body: body, Resources: resources}, nil
	}

	data.Reason = renderReason(d.Reason, data)

	switch d.Outcome {
	case OutcomeDisqualify:
		body, err := execute(disqualifyBody, data)
		if err != nil {
			return Message{}, err
		}
		return Message{Title: titleNotEligible, Body: body, Recommendation: physicianRecommend}, nil
	case OutcomeFlag:
		body, err := execute(flagBody, data)
		if err != nil {
			return Message{}, err
		}
		return Message{Title: titleReview, Body: body}, nil
	default:
		body, err := execute(proceedBody, data)
		if err != nil {
			return Message{}, err
		}
		return Message{Title: titleEligible, Body: body}, nil
	}
}

func renderReason(reason string, data MessageData) string {
	if !strings.Contains(reason, "{{") {
		return reason
	}
	tmpl, err := template.New("reason").Funcs(sprig.TxtFuncMap()).Parse(reason)
	if err != nil {
		return reason
	}
	out, err := execute(tmpl, data)
	if err != nil {
		return reason
	}
	return out
}

func execute(tmpl *template.Template, data MessageData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
