package screener

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testGLP1Schema = `{
  "screener": "glp1",
  "category": "weightloss",
  "questions": [
    { "id": "email", "text": "Email", "type": "email" },
    { "id": "phone", "text": "Phone", "type": "phone", "required": false },
    { "id": "date_of_birth", "text": "Date of birth", "type": "date" },
    { "id": "gender", "text": "Sex", "type": "radio", "safe": ["male", "female"] },
    { "id": "pregnancy", "text": "Pregnant?", "type": "radio", "showCondition": "if_gender_female", "safe": ["no"], "disqualify": ["yes"] },
    { "id": "height_feet", "text": "Feet", "type": "heightFeet" },
    { "id": "height_inches", "text": "Inches", "type": "heightInches" },
    { "id": "weight", "text": "Weight", "type": "weightPounds" },
    { "id": "depression", "text": "Depressed?", "type": "radio", "safe": ["no"], "disqualify": ["yes"], "disqualifyMessage": "DEPRESSION_SPECIAL_MESSAGE" },
    { "id": "chemotherapy", "text": "Chemo?", "type": "radio", "safe": ["no"], "disqualify": ["yes"] },
    { "id": "alcohol_amount", "text": "Alcohol", "type": "radio", "safe": ["none"], "flag": ["3-5_weekly", "1-2_daily"], "disqualify": ["2+_daily"] },
    {
      "id": "medical_conditions", "text": "Conditions", "type": "checkbox", "required": false,
      "safe": ["none"],
      "flag": ["diabetes_type2", "kidney_disease"],
      "disqualify": ["pancreatitis", "men2"]
    },
    {
      "id": "current_medications", "text": "Medications", "type": "checkbox", "required": false,
      "safe": ["none"],
      "flag": ["insulin_secretagogues"],
      "disqualify": ["insulin", "other_glp1s"]
    },
    { "id": "other_glp1_details", "text": "Which GLP-1?", "type": "text", "showCondition": "if_other_glp1s_selected" }
  ]
}`

const testSermorelinSchema = `{
  "screener": "sermorelin",
  "category": "hormones",
  "questions": [
    { "id": "date_of_birth", "text": "Date of birth", "type": "date" },
    { "id": "cancer", "text": "Cancer?", "type": "radio", "safe": ["no"], "disqualify": ["yes"] },
    { "id": "athlete", "text": "Athlete?", "type": "radio", "safe": ["no", "yes"] },
    { "id": "thyroid", "text": "Thyroid?", "type": "radio", "safe": ["no", "yes"] },
    { "id": "thyroid_controlled", "text": "Controlled?", "type": "radio", "showCondition": "thyroid=yes", "safe": ["yes", "no"] },
    { "id": "current_sermorelin", "text": "Current use?", "type": "radio", "safe": ["no", "yes"] },
    { "id": "current_sermorelin_dose", "text": "Dose", "type": "text", "showCondition": "current_sermorelin=yes" }
  ]
}`

var testToday = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testToday }

func mustParse(t *testing.T, raw string) *Screener {
	t.Helper()
	s, err := ParseSchema([]byte(raw))
	require.NoError(t, err)
	return s
}

func newTestSession(t *testing.T, raw string) *Session {
	t.Helper()
	return NewSession(mustParse(t, raw), DefaultRuleTable(), WithClock(fixedClock))
}

// answerAll applies answers in order and fails the test on rejection.
func answerAll(t *testing.T, s *Session, answers map[QuestionID][]string, order ...QuestionID) Evaluation {
	t.Helper()
	var eval Evaluation
	for _, id := range order {
		var err error
		eval, err = s.Answer(id, answers[id]...)
		require.NoError(t, err, "answer %s", id)
	}
	return eval
}

// eligibleAdult answers the GLP-1 test screener as an adult male with a BMI
// just above the gate and nothing disqualifying.
func eligibleAdult(t *testing.T, s *Session) Evaluation {
	t.Helper()
	answers := map[QuestionID][]string{
		"email":               {"pat@example.com"},
		"date_of_birth":       {"1990-03-02"},
		"gender":              {"male"},
		"height_feet":         {"5"},
		"height_inches":       {"6"},
		"weight":              {"180"},
		"depression":          {"no"},
		"chemotherapy":        {"no"},
		"alcohol_amount":      {"none"},
		"medical_conditions":  {"none"},
		"current_medications": {"none"},
	}
	return answerAll(t, s, answers,
		"email", "date_of_birth", "gender", "height_feet", "height_inches", "weight",
		"depression", "chemotherapy", "alcohol_amount", "medical_conditions", "current_medications")
}
