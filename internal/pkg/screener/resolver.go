package screener

import (
	"fmt"
	"time"
)

// Rule ids reported for decisions that do not come from a table rule.
const (
	RuleIDAge            = "age"
	RuleIDBMI            = "bmi"
	ruleIDQuestionPrefix = "question:"
)

// Resolve applies the rules in fixed precedence and returns the first
// decision that fires:
//
//  1. age below the minimum
//  2. universal disqualifiers
//  3. the profile's disqualify rules
//  4. disqualifying options of the screener's own value sets
//  5. the BMI gate of BMI-gated profiles
//  6. the profile's flag rules, then flagged options
//
// Anything else proceeds. Hidden questions are never read.
func (t *RuleTable) Resolve(s *Screener, p Profile, store *ResponseStore, vis Visibility, m Metrics) Decision {
	lookup := func(field string) []string {
		id, ok := s.Resolve(field)
		if !ok || !vis.Visible(id) {
			return nil
		}
		return store.lookup(id)
	}

	if m.Age != nil && *m.Age < t.MinimumAge {
		return Decision{Outcome: OutcomeDisqualify, Reason: t.AgeReason, RuleID: RuleIDAge}
	}

	if r, ok := firstMatch(t.Universal, lookup); ok {
		return Decision{Outcome: OutcomeDisqualify, Reason: r.Reason, RuleID: r.ID}
	}
	if r, ok := firstMatch(p.Disqualify, lookup); ok {
		return Decision{Outcome: OutcomeDisqualify, Reason: r.Reason, RuleID: r.ID}
	}
	if q, ok := firstOptionInTier(s, store, vis, TierDisqualify); ok {
		reason := q.DisqualifyMessage
		if reason == "" {
			reason = t.DefaultDisqualifyReason
		}
		return Decision{Outcome: OutcomeDisqualify, Reason: reason, RuleID: ruleIDQuestionPrefix + string(q.ID)}
	}

	if p.BMIGated() && m.BMI != nil && *m.BMI < p.MinimumBMI {
		reason := p.BMIReason
		if reason == "" {
			reason = fmt.Sprintf("A BMI of %g or higher is required.", p.MinimumBMI)
		}
		return Decision{Outcome: OutcomeDisqualify, Reason: reason, RuleID: RuleIDBMI}
	}

	if r, ok := firstMatch(p.Flag, lookup); ok {
		return Decision{Outcome: OutcomeFlag, Reason: r.Reason, RuleID: r.ID}
	}
	if q, ok := firstOptionInTier(s, store, vis, TierFlag); ok {
		return Decision{Outcome: OutcomeFlag, Reason: t.DefaultFlagReason, RuleID: ruleIDQuestionPrefix + string(q.ID)}
	}
	return Proceed()
}

func firstOptionInTier(s *Screener, store *ResponseStore, vis Visibility, tier Tier) (Question, bool) {
	for _, q := range s.questions {
		if q.ConfigErr != nil || !q.InputType.IsChoice() || !vis.Visible(q.ID) {
			continue
		}
		for _, v := range store.lookup(q.ID) {
			if got, ok := q.TierOf(v); ok && got == tier {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Evaluation is the result of one pass over a session's answers.
type Evaluation struct {
	Visibility Visibility
	Cleared    []QuestionID
	Metrics    Metrics
	Decision   Decision
}

// Evaluate runs a full pass over responses without any session state. The
// same inputs always give the same Evaluation.
func Evaluate(s *Screener, t *RuleTable, p Profile, responses map[QuestionID][]string, today time.Time) (Evaluation, error) {
	store := NewResponseStore(s)
	if err := store.Load(responses); err != nil {
		return Evaluation{}, err
	}
	return evaluateStore(s, t, p, store, today), nil
}

func evaluateStore(s *Screener, t *RuleTable, p Profile, store *ResponseStore, today time.Time) Evaluation {
	vis, cleared := EvaluateVisibility(s, store)
	m := ComputeMetrics(s, store, vis, today)
	return Evaluation{
		Visibility: vis,
		Cleared:    cleared,
		Metrics:    m,
		Decision:   t.Resolve(s, p, store, vis, m),
	}
}
