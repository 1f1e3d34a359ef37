package screener

import (
	"fmt"
	"strings"
)

// Operator compares the answer of a field with a rule's comparison set.
type Operator string

const (
	// OpIn matches when any selected value is in the set.
	OpIn Operator = "in"
	// OpEq matches when the single answer equals one of the set.
	OpEq Operator = "eq"
	// OpAnyExcept matches when something is selected and at least one
	// selection lies outside the set.
	OpAnyExcept Operator = "any_except"
	// OpNotIn matches when the field is answered and no selection is in the set.
	OpNotIn Operator = "not_in"
)

func (o Operator) valid() bool {
	switch o {
	case OpIn, OpEq, OpAnyExcept, OpNotIn:
		return true
	}
	return false
}

// Predicate is one (fieldId, operator, comparisonSet) test.
type Predicate struct {
	Field  string   `yaml:"field" json:"field"`
	Op     Operator `yaml:"op" json:"op"`
	Values []string `yaml:"values" json:"values"`
}

func (p Predicate) match(answer []string) bool {
	switch p.Op {
	case OpEq:
		return len(answer) == 1 && contains(p.Values, answer[0])
	case OpIn:
		for _, a := range answer {
			if contains(p.Values, a) {
				return true
			}
		}
		return false
	case OpAnyExcept:
		for _, a := range answer {
			if !contains(p.Values, a) {
				return true
			}
		}
		return false
	case OpNotIn:
		if len(answer) == 0 {
			return false
		}
		for _, a := range answer {
			if contains(p.Values, a) {
				return false
			}
		}
		return true
	}
	return false
}

// Rule fires when all of its predicates match.
type Rule struct {
	ID     string      `yaml:"id" json:"id"`
	Reason string      `yaml:"reason" json:"reason"`
	When   []Predicate `yaml:"when" json:"when"`
}

func (r Rule) validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("rule without id")
	}
	if len(r.When) == 0 {
		return fmt.Errorf("rule %s has no predicates", r.ID)
	}
	for _, p := range r.When {
		if p.Field == "" {
			return fmt.Errorf("rule %s has a predicate without field", r.ID)
		}
		if !p.Op.valid() {
			return fmt.Errorf("rule %s uses unknown operator %q", r.ID, p.Op)
		}
		if len(p.Values) == 0 {
			return fmt.Errorf("rule %s has an empty comparison set for %s", r.ID, p.Field)
		}
	}
	return nil
}

// answerLookup returns the visible answer for a rule field, nil when the
// screener does not ask it or the question is hidden.
type answerLookup func(field string) []string

func (r Rule) matches(lookup answerLookup) bool {
	for _, p := range r.When {
		if !p.match(lookup(p.Field)) {
			return false
		}
	}
	return true
}

func firstMatch(rules []Rule, lookup answerLookup) (Rule, bool) {
	for _, r := range rules {
		if r.matches(lookup) {
			return r, true
		}
	}
	return Rule{}, false
}
