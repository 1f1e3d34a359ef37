package screener

import (
	"fmt"
	"sync"
	"time"
)

// Clock supplies "today" for age calculation.
type Clock func() time.Time

// Session owns the mutable state of one respondent working through a
// screener. Each change runs one full pass before the next is accepted.
type Session struct {
	mu       sync.Mutex
	screener *Screener
	table    *RuleTable
	profile  Profile
	store    *ResponseStore
	last     *Evaluation
	now      Clock
}

type SessionOption func(*Session)

func WithClock(c Clock) SessionOption {
	return func(s *Session) {
		s.now = c
	}
}

// WithProfile overrides the profile looked up from the screener type.
func WithProfile(p Profile) SessionOption {
	return func(s *Session) {
		s.profile = p
	}
}

func NewSession(sc *Screener, table *RuleTable, opts ...SessionOption) *Session {
	profile, _ := table.Profile(sc.Type)
	s := &Session{
		screener: sc,
		table:    table,
		profile:  profile,
		store:    NewResponseStore(sc),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Screener() *Screener { return s.screener }

func (s *Session) Profile() Profile { return s.profile }

// Answer records values for id and re-evaluates. A rejected answer leaves
// the session untouched.
func (s *Session) Answer(id QuestionID, values ...string) (Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.screener.Has(id) {
		return s.current(), fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}
	if err := s.store.Set(id, values...); err != nil {
		return s.current(), err
	}
	return s.pass(), nil
}

// Load replaces all answers, e.g. when restoring a stored session.
func (s *Session) Load(snapshot map[QuestionID][]string) (Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Load(snapshot); err != nil {
		s.last = nil
		return s.current(), err
	}
	return s.pass(), nil
}

// LoadAccepted restores the answers the screener still accepts and runs a
// single pass over them. It returns the ids that were left out.
func (s *Session) LoadAccepted(snapshot map[QuestionID][]string) (Evaluation, []QuestionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := s.store.LoadAccepted(snapshot)
	return s.pass(), dropped
}

// Evaluate re-runs a pass over the current answers.
func (s *Session) Evaluate() Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pass()
}

// Reset clears every answer, reverts visibility to its initial state and
// drops the last decision.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reset()
	s.last = nil
}

// Decision returns the decision of the last pass, if one ran since the
// session was created or reset.
func (s *Session) Decision() (Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Decision{}, false
	}
	return s.last.Decision, true
}

func (s *Session) Snapshot() map[QuestionID][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Validate checks the current answers for submission.
func (s *Session) Validate() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Validate(s.screener, s.store, EvaluateVisibilityReadOnly(s.screener, s.store))
}

// Submission evaluates and builds the collector payload stamped with at.
func (s *Session) Submission(at time.Time) (Submission, Evaluation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eval := s.pass()
	return BuildSubmission(s.screener, s.profile, s.store, eval.Decision, at), eval
}

func (s *Session) pass() Evaluation {
	eval := evaluateStore(s.screener, s.table, s.profile, s.store, s.now())
	s.last = &eval
	return eval
}

// current reports the last evaluation, or the initial state when none ran.
func (s *Session) current() Evaluation {
	if s.last != nil {
		return *s.last
	}
	return Evaluation{Visibility: InitialVisibility(s.screener), Decision: Proceed()}
}
