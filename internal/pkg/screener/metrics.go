package screener

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayouts are the accepted encodings of a date answer.
var DateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006"}

// ParseDate parses a date answer into a calendar date at UTC midnight.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Age is the number of completed years between dob and today, compared as
// calendar dates.
func Age(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// BMI computes the body mass index from imperial measurements. It is defined
// only for a positive height in feet, non-negative inches and positive weight.
func BMI(feet, inches, pounds float64) (float64, bool) {
	if !(feet > 0) || !(inches >= 0) || !(pounds > 0) {
		return 0, false
	}
	totalInches := feet*12 + inches
	return pounds / (totalInches * totalInches) * 703, true
}

// Metrics are the values derived from raw answers. Nil means undefined.
type Metrics struct {
	Age *int     `json:"age,omitempty"`
	BMI *float64 `json:"bmi,omitempty"`
}

// ComputeMetrics derives age and BMI from the visible answers of s.
func ComputeMetrics(s *Screener, store *ResponseStore, vis Visibility, today time.Time) Metrics {
	var m Metrics

	if q, ok := DateOfBirthQuestion(s); ok && vis.Visible(q.ID) {
		if dob, ok := ParseDate(firstValue(store.lookup(q.ID))); ok {
			age := Age(dob, today)
			m.Age = &age
		}
	}

	feet, okFeet := numericAnswer(s, store, vis, InputHeightFeet)
	pounds, okPounds := numericAnswer(s, store, vis, InputWeightPounds)
	inches, okInches := numericAnswer(s, store, vis, InputHeightInches)
	if !okInches {
		inches = 0
	}
	if okFeet && okPounds {
		if bmi, ok := BMI(feet, inches, pounds); ok {
			m.BMI = &bmi
		}
	}
	return m
}

// DateOfBirthQuestion finds the date question holding the respondent's birth
// date: one named like a birth date, else the first date question.
func DateOfBirthQuestion(s *Screener) (Question, bool) {
	for _, q := range s.questions {
		if q.InputType != InputDate {
			continue
		}
		key := strings.ToLower(q.Key())
		if key == "dob" || strings.Contains(key, "birth") {
			return q, true
		}
	}
	return s.FirstOfType(InputDate)
}

func numericAnswer(s *Screener, store *ResponseStore, vis Visibility, t InputType) (float64, bool) {
	q, ok := s.FirstOfType(t)
	if !ok || !vis.Visible(q.ID) {
		return 0, false
	}
	raw := firstValue(store.lookup(q.ID))
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
