package screener

import (
	"fmt"
	"sort"
	"strings"
)

// ResponseStore holds the current answers of one session. Every accessor
// panics with ErrUnknownQuestion when given an id the screener lacks.
type ResponseStore struct {
	screener *Screener
	values   map[QuestionID][]string
}

func NewResponseStore(s *Screener) *ResponseStore {
	return &ResponseStore{
		screener: s,
		values:   make(map[QuestionID][]string),
	}
}

func (r *ResponseStore) mustQuestion(id QuestionID) Question {
	q, ok := r.screener.Question(id)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnknownQuestion, id))
	}
	return q
}

// Set records the answer for id. Calling it with no values clears the answer.
// Choice answers outside the question's value sets are refused with a
// *ConfigurationError and the previous answer is kept.
func (r *ResponseStore) Set(id QuestionID, values ...string) error {
	q := r.mustQuestion(id)

	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || contains(cleaned, v) {
			continue
		}
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		delete(r.values, id)
		return nil
	}

	if q.ConfigErr != nil {
		return q.ConfigErr
	}
	if !q.InputType.IsMultiSelect() && len(cleaned) > 1 {
		return &ConfigurationError{QuestionID: id, Reason: fmt.Sprintf("%s question accepts a single value", q.InputType)}
	}
	if q.InputType.IsChoice() {
		for _, v := range cleaned {
			if _, ok := q.TierOf(v); !ok {
				return &ConfigurationError{QuestionID: id, Reason: fmt.Sprintf("option %q is not offered", v)}
			}
		}
	}

	r.values[id] = cleaned
	return nil
}

func (r *ResponseStore) Clear(id QuestionID) {
	r.mustQuestion(id)
	delete(r.values, id)
}

// Values returns a copy of the answer for id; nil when unanswered.
func (r *ResponseStore) Values(id QuestionID) []string {
	r.mustQuestion(id)
	v, ok := r.values[id]
	if !ok {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Value returns the first value of the answer for id.
func (r *ResponseStore) Value(id QuestionID) string {
	r.mustQuestion(id)
	if v := r.values[id]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func (r *ResponseStore) Has(id QuestionID) bool {
	r.mustQuestion(id)
	return len(r.values[id]) > 0
}

func (r *ResponseStore) Includes(id QuestionID, value string) bool {
	r.mustQuestion(id)
	return contains(r.values[id], value)
}

// Reset drops every answer.
func (r *ResponseStore) Reset() {
	r.values = make(map[QuestionID][]string)
}

// Snapshot copies the answers keyed by question id.
func (r *ResponseStore) Snapshot() map[QuestionID][]string {
	out := make(map[QuestionID][]string, len(r.values))
	for id, v := range r.values {
		cp := make([]string, len(v))
		copy(cp, v)
		out[id] = cp
	}
	return out
}

// Load replaces the answers with snapshot, applying the same checks as Set.
// On error the store is left empty.
func (r *ResponseStore) Load(snapshot map[QuestionID][]string) error {
	r.Reset()
	for _, q := range r.screener.questions {
		values, ok := snapshot[q.ID]
		if !ok {
			continue
		}
		if err := r.Set(q.ID, values...); err != nil {
			r.Reset()
			return err
		}
	}
	for id := range snapshot {
		if !r.screener.Has(id) {
			r.Reset()
			return &ConfigurationError{QuestionID: id, Reason: "answer for a question the screener does not define"}
		}
	}
	return nil
}

// LoadAccepted replaces the answers with the part of snapshot the screener
// still accepts. Answers are applied in schema order with the checks of Set.
// The ids left out are returned, known questions first in schema order, then
// unknown ids sorted.
func (r *ResponseStore) LoadAccepted(snapshot map[QuestionID][]string) []QuestionID {
	r.Reset()
	var dropped []QuestionID
	for _, q := range r.screener.questions {
		values, ok := snapshot[q.ID]
		if !ok {
			continue
		}
		if err := r.Set(q.ID, values...); err != nil {
			dropped = append(dropped, q.ID)
		}
	}

	var unknown []QuestionID
	for id := range snapshot {
		if !r.screener.Has(id) {
			unknown = append(unknown, id)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return append(dropped, unknown...)
}

// lookup is the non-panicking read used by rule evaluation, where predicates
// may name fields a given screener does not ask.
func (r *ResponseStore) lookup(id QuestionID) []string {
	return r.values[id]
}
