package screener

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

const conditionAlways = "always"

// ShowCondition gates a question on the answer to an earlier one. The zero
// value means the question is always shown.
type ShowCondition struct {
	TriggerID    QuestionID
	TriggerValue string
}

// Always reports whether the question is unconditionally visible.
func (c ShowCondition) Always() bool {
	return c.TriggerID == ""
}

func (c ShowCondition) String() string {
	if c.Always() {
		return conditionAlways
	}
	return fmt.Sprintf("%s=%s", c.TriggerID, c.TriggerValue)
}

func (c ShowCondition) MarshalJSON() ([]byte, error) {
	if c.Always() {
		return json.Marshal(conditionAlways)
	}
	return json.Marshal(struct {
		Question QuestionID `json:"question"`
		Value    string     `json:"value"`
	}{c.TriggerID, c.TriggerValue})
}

type conditionObject struct {
	Question          QuestionID `json:"question"`
	QuestionID        QuestionID `json:"questionId"`
	TriggerQuestionID QuestionID `json:"triggerQuestionId"`
	Value             string     `json:"value"`
	TriggerValue      string     `json:"triggerValue"`
}

// compound expressions are rejected instead of being half-evaluated
var compoundMarkers = []string{"&&", "||", " and ", " or ", "(", ")", ",", "!"}

// parseShowCondition decodes the raw showCondition of a question. Trigger names
// are resolved against questions already indexed in s.
func parseShowCondition(raw json.RawMessage, s *Screener) (ShowCondition, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ShowCondition{}, nil
	}

	if raw[0] == '{' {
		var obj conditionObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ShowCondition{}, fmt.Errorf("invalid showCondition object: %w", err)
		}
		trigger := firstNonEmpty(string(obj.Question), string(obj.QuestionID), string(obj.TriggerQuestionID))
		value := firstNonEmpty(obj.Value, obj.TriggerValue)
		if trigger == "" || value == "" {
			return ShowCondition{}, fmt.Errorf("showCondition object needs both a question and a value")
		}
		id, ok := s.Resolve(trigger)
		if !ok {
			return ShowCondition{}, fmt.Errorf("showCondition references unknown question %q", trigger)
		}
		return ShowCondition{TriggerID: id, TriggerValue: value}, nil
	}

	var expr string
	if err := json.Unmarshal(raw, &expr); err != nil {
		return ShowCondition{}, fmt.Errorf("showCondition must be a string or an object")
	}
	return parseConditionExpr(expr, s)
}

func parseConditionExpr(expr string, s *Screener) (ShowCondition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, conditionAlways) {
		return ShowCondition{}, nil
	}
	lower := strings.ToLower(expr)
	for _, marker := range compoundMarkers {
		if strings.Contains(lower, marker) {
			return ShowCondition{}, fmt.Errorf("compound showCondition %q is not supported", expr)
		}
	}

	if field, value, ok := strings.Cut(expr, "="); ok {
		field, value = strings.TrimSpace(field), strings.TrimSpace(value)
		id, found := s.Resolve(field)
		if !found {
			return ShowCondition{}, fmt.Errorf("showCondition references unknown question %q", field)
		}
		if value == "" {
			return ShowCondition{}, fmt.Errorf("showCondition %q has no trigger value", expr)
		}
		return ShowCondition{TriggerID: id, TriggerValue: value}, nil
	}

	if strings.HasPrefix(lower, "if_") {
		return parseLegacyCondition(expr[3:], s)
	}

	return ShowCondition{}, fmt.Errorf("unsupported showCondition %q", expr)
}

// parseLegacyCondition handles the "if_<field>_<value>" form. Field names may
// contain underscores, so the longest known field prefix wins. The
// "if_<option>_selected" variant triggers on the question offering that option.
func parseLegacyCondition(rest string, s *Screener) (ShowCondition, error) {
	keys := s.fieldKeys()
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, key := range keys {
		prefix := key + "_"
		if strings.HasPrefix(rest, prefix) && len(rest) > len(prefix) {
			id, _ := s.Resolve(key)
			return ShowCondition{TriggerID: id, TriggerValue: rest[len(prefix):]}, nil
		}
	}

	if option, ok := strings.CutSuffix(rest, "_selected"); ok && option != "" {
		if id, found := s.questionOffering(option); found {
			return ShowCondition{TriggerID: id, TriggerValue: option}, nil
		}
	}
	return ShowCondition{}, fmt.Errorf("showCondition %q does not name a known question", "if_"+rest)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
