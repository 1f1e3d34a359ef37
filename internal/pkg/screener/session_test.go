package screener

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	t.Run("Reset restores the initial state", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		eligibleAdult(t, s)
		_, err := s.Answer("gender", "female")
		require.NoError(t, err)
		_, err = s.Answer("depression", "yes")
		require.NoError(t, err)

		s.Reset()

		_, ok := s.Decision()
		assert.False(t, ok, "no decision survives a reset")
		assert.Empty(t, s.Snapshot())
		eval := s.Evaluate()
		assert.True(t, eval.Visibility.Equal(InitialVisibility(s.Screener())))
		assert.Equal(t, Proceed(), eval.Decision)
	})

	t.Run("Unknown ids are reported, not stored", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		_, err := s.Answer("ghost", "x")
		assert.True(t, errors.Is(err, ErrUnknownQuestion))
	})

	t.Run("Rejected answers leave the last evaluation in place", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		eligibleAdult(t, s)

		eval, err := s.Answer("alcohol_amount", "lots")
		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, OutcomeProceed, eval.Decision.Outcome)
		assert.Equal(t, []string{"none"}, s.Snapshot()["alcohol_amount"])
	})

	t.Run("LoadAccepted keeps conditional answers in one pass", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			s := newTestSession(t, testGLP1Schema)
			eval, dropped := s.LoadAccepted(map[QuestionID][]string{
				"pregnancy":        {"yes"},
				"gender":           {"female"},
				"retired_question": {"x"},
			})
			require.Equal(t, []QuestionID{"retired_question"}, dropped)
			require.Equal(t, OutcomeDisqualify, eval.Decision.Outcome)
			require.Empty(t, eval.Cleared)
			require.Equal(t, []string{"yes"}, s.Snapshot()["pregnancy"])
		}
	})

	t.Run("Load restores a stored session", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		eval, err := s.Load(map[QuestionID][]string{"date_of_birth": {"2010-01-01"}})
		require.NoError(t, err)
		assert.Equal(t, RuleIDAge, eval.Decision.RuleID)

		d, ok := s.Decision()
		assert.True(t, ok)
		assert.Equal(t, eval.Decision, d)
	})

	t.Run("Clock drives the age gate", func(t *testing.T) {
		sc := mustParse(t, testGLP1Schema)
		early := NewSession(sc, DefaultRuleTable(), WithClock(func() time.Time { return time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC) }))
		late := NewSession(sc, DefaultRuleTable(), WithClock(func() time.Time { return time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC) }))

		e1, err := early.Answer("date_of_birth", "2008-06-15")
		require.NoError(t, err)
		e2, err := late.Answer("date_of_birth", "2008-06-15")
		require.NoError(t, err)
		assert.Equal(t, OutcomeDisqualify, e1.Decision.Outcome)
		assert.Equal(t, OutcomeProceed, e2.Decision.Outcome)
	})
}

func TestValidate(t *testing.T) {
	t.Run("Reports required and malformed fields", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		answerAll(t, s, map[QuestionID][]string{
			"email":         {"not-an-email"},
			"phone":         {"0123"},
			"date_of_birth": {"31/31/1990"},
			"height_inches": {"14"},
			"gender":        {"female"},
		}, "email", "phone", "date_of_birth", "height_inches", "gender")

		errs := s.Validate()
		for id, code := range map[QuestionID]string{
			"email":         ValidationEmail,
			"phone":         ValidationPhone,
			"date_of_birth": ValidationDate,
			"height_inches": ValidationNumber,
			"pregnancy":     ValidationRequired,
			"weight":        ValidationRequired,
		} {
			e, ok := errs.Field(id)
			if assert.True(t, ok, "expected an error for %s", id) {
				assert.Equal(t, code, e.Code, id)
				assert.NotEmpty(t, e.Message)
			}
		}
		_, ok := errs.Field("other_glp1_details")
		assert.False(t, ok, "hidden questions are not required")
		_, ok = errs.Field("medical_conditions")
		assert.False(t, ok, "optional questions may stay blank")
	})

	t.Run("Accepts formatted phone numbers", func(t *testing.T) {
		for _, phone := range []string{"+1 (555) 123-4567", "5551234567", "44-20-7946-0958"} {
			assert.NoError(t, validate.Var(phone, "screener_phone"), phone)
		}
		assert.Error(t, validate.Var("+0 555", "screener_phone"))
		assert.Equal(t, "+15551234567", NormalizePhone("+1 (555) 123-4567"))
	})

	t.Run("Complete answers pass", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		eligibleAdult(t, s)
		assert.Empty(t, s.Validate())
	})
}

func TestRenderMessage(t *testing.T) {
	t.Run("Safety sentinel shows crisis resources without a recommendation", func(t *testing.T) {
		msg, err := RenderMessage(Decision{Outcome: OutcomeDisqualify, Reason: SafetyCriticalReason}, MessageData{})
		require.NoError(t, err)

		assert.Empty(t, msg.Recommendation)
		assert.Contains(t, strings.Join(msg.Resources, " "), "988")
		assert.Contains(t, strings.Join(msg.Resources, " "), "911")
		assert.NotContains(t, msg.Body, SafetyCriticalReason)
	})

	t.Run("Generic disqualification carries the reason and a recommendation", func(t *testing.T) {
		msg, err := RenderMessage(Decision{Outcome: OutcomeDisqualify, Reason: "HbA1C >8% is a contraindication."}, MessageData{})
		require.NoError(t, err)

		assert.Equal(t, "Not Eligible for Treatment", msg.Title)
		assert.True(t, strings.HasSuffix(msg.Body, "you don't qualify because HbA1C >8% is a contraindication."))
		assert.NotEmpty(t, msg.Recommendation)
		assert.Empty(t, msg.Resources)
	})

	t.Run("Reasons may be templates", func(t *testing.T) {
		bmi := 23.456
		data := NewMessageData(Profile{MinimumBMI: 25}, Metrics{BMI: &bmi})
		msg, err := RenderMessage(Decision{
			Outcome: OutcomeDisqualify,
			Reason:  `your BMI of {{ printf "%.1f" .BMI }} is below {{ .MinimumBMI }}.`,
		}, data)
		require.NoError(t, err)
		assert.Contains(t, msg.Body, "your BMI of 23.5 is below 25.")
	})

	t.Run("Broken templates fall back to the raw reason", func(t *testing.T) {
		msg, err := RenderMessage(Decision{Outcome: OutcomeFlag, Reason: "{{ .Nope"}, MessageData{})
		require.NoError(t, err)
		assert.Contains(t, msg.Body, "{{ .Nope")
	})
}

func TestBuildSubmission(t *testing.T) {
	at := time.Date(2026, 6, 15, 12, 30, 0, 0, time.UTC)

	t.Run("Proceed carries no reason", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		eligibleAdult(t, s)
		_, err := s.Answer("current_medications", "none")
		require.NoError(t, err)

		sub, eval := s.Submission(at)
		require.Equal(t, OutcomeProceed, eval.Decision.Outcome)

		raw, err := json.Marshal(sub)
		require.NoError(t, err)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &decoded))

		assert.Equal(t, "GLP1_Screening", decoded["form_type"])
		assert.Equal(t, "2026-06-15T12:30:00.000Z", decoded["timestamp"])
		assert.Equal(t, "PROCEED", decoded["routing_outcome"])
		_, hasReason := decoded["routing_reason"]
		assert.False(t, hasReason)
		assert.Equal(t, map[string]interface{}{
			"medical_conditions":  []interface{}{"none"},
			"current_medications": []interface{}{"none"},
		}, decoded["multi_select_responses"])
	})

	t.Run("Flag and disqualify carry the reason", func(t *testing.T) {
		s := newTestSession(t, testGLP1Schema)
		eligibleAdult(t, s)
		_, err := s.Answer("medical_conditions", "diabetes_type2", "kidney_disease")
		require.NoError(t, err)

		sub, eval := s.Submission(at)
		assert.Equal(t, OutcomeFlag, sub.RoutingOutcome)
		assert.Equal(t, eval.Decision.Reason, sub.RoutingReason)
		assert.Equal(t, "diabetes_type2,kidney_disease", sub.Responses["medical_conditions"])
		assert.Equal(t, []string{"diabetes_type2", "kidney_disease"}, sub.MultiSelectResponses["medical_conditions"])
		assert.Equal(t, "180", sub.Responses["weight"])
	})

	t.Run("Screeners without checkboxes omit multi select responses", func(t *testing.T) {
		s := newTestSession(t, testSermorelinSchema)
		sub, _ := s.Submission(at)
		assert.Nil(t, sub.MultiSelectResponses)
		assert.Equal(t, "Sermorelin_Screening", sub.FormType)
	})
}
