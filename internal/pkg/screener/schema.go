package screener

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// QuestionID identifies a question within one screener. Schemas may use
// numeric or string ids; both are kept in their textual form.
type QuestionID string

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = QuestionID(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("question id must be a string or a number")
	}
	*id = QuestionID(n.String())
	return nil
}

// Tier is the triage weight of an answer option.
type Tier int

const (
	TierSafe Tier = iota + 1
	TierFlag
	TierDisqualify
)

func (t Tier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierFlag:
		return "flag"
	case TierDisqualify:
		return "disqualify"
	}
	return "unknown"
}

// ValueSets partitions the options of a question into triage tiers.
type ValueSets struct {
	Safe       []string `json:"safe,omitempty"`
	Flag       []string `json:"flag,omitempty"`
	Disqualify []string `json:"disqualify,omitempty"`
}

func (v ValueSets) empty() bool {
	return len(v.Safe) == 0 && len(v.Flag) == 0 && len(v.Disqualify) == 0
}

// Question is one prompt of a screener.
type Question struct {
	ID                QuestionID    `json:"id"`
	Name              string        `json:"name,omitempty"`
	Text              string        `json:"text"`
	Section           string        `json:"section,omitempty"`
	InputType         InputType     `json:"type"`
	ValueSets         ValueSets     `json:"value_sets"`
	ShowCondition     ShowCondition `json:"show_condition"`
	DisqualifyMessage string        `json:"disqualify_message,omitempty"`
	Required          bool          `json:"required"`

	// ConfigErr marks a question that cannot be answered as defined. Other
	// questions keep working.
	ConfigErr *ConfigurationError `json:"-"`
}

// Options returns the renderable options in schema order without duplicates.
func (q Question) Options() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range [][]string{q.ValueSets.Safe, q.ValueSets.Flag, q.ValueSets.Disqualify} {
		for _, v := range set {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// TierOf reports which value set contains value.
func (q Question) TierOf(value string) (Tier, bool) {
	switch {
	case contains(q.ValueSets.Disqualify, value):
		return TierDisqualify, true
	case contains(q.ValueSets.Flag, value):
		return TierFlag, true
	case contains(q.ValueSets.Safe, value):
		return TierSafe, true
	}
	return 0, false
}

// Key is the name used by rule predicates: the name alias when present.
func (q Question) Key() string {
	if q.Name != "" {
		return q.Name
	}
	return string(q.ID)
}

// Screener is an immutable, parsed questionnaire definition.
type Screener struct {
	Type     string
	Category string

	questions []Question
	byID      map[QuestionID]int
	byName    map[string]QuestionID
}

type rawQuestion struct {
	ID                QuestionID      `json:"id"`
	Name              string          `json:"name"`
	Text              string          `json:"text"`
	Question          string          `json:"question"`
	Section           string          `json:"section"`
	Type              string          `json:"type"`
	ShowCondition     json.RawMessage `json:"showCondition"`
	Safe              []string        `json:"safe"`
	Flag              []string        `json:"flag"`
	Disqualify        []string        `json:"disqualify"`
	DisqualifyMessage string          `json:"disqualifyMessage"`
	Required          *bool           `json:"required"`
}

type rawScreener struct {
	Screener     string        `json:"screener"`
	ScreenerType string        `json:"screenerType"`
	Category     string        `json:"category"`
	Questions    []rawQuestion `json:"questions"`
}

// ParseSchema decodes and checks a screener definition. Schema-wide problems
// yield a *ParseError; choice questions without options are kept but marked
// with a ConfigurationError.
func ParseSchema(raw []byte) (*Screener, error) {
	var doc rawScreener
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Problems: []*ConfigurationError{{Reason: "malformed schema: " + err.Error()}}}
	}

	perr := &ParseError{}
	s := &Screener{
		Type:     strings.ToLower(strings.TrimSpace(firstNonEmpty(doc.Screener, doc.ScreenerType))),
		Category: strings.TrimSpace(doc.Category),
		byID:     make(map[QuestionID]int, len(doc.Questions)),
		byName:   make(map[string]QuestionID),
	}
	if len(doc.Questions) == 0 {
		perr.add("", "schema has no questions")
	}

	for _, rq := range doc.Questions {
		if rq.ID == "" {
			perr.add("", "question %q has no id", firstNonEmpty(rq.Text, rq.Question))
			continue
		}
		if _, dup := s.byID[rq.ID]; dup {
			perr.add(rq.ID, "duplicate question id")
			continue
		}
		inputType, err := ParseInputType(rq.Type)
		if err != nil {
			perr.add(rq.ID, "%s", err.Error())
			continue
		}
		q := Question{
			ID:                rq.ID,
			Name:              strings.TrimSpace(rq.Name),
			Text:              firstNonEmpty(rq.Text, rq.Question),
			Section:           rq.Section,
			InputType:         inputType,
			ValueSets:         ValueSets{Safe: rq.Safe, Flag: rq.Flag, Disqualify: rq.Disqualify},
			DisqualifyMessage: rq.DisqualifyMessage,
			Required:          rq.Required == nil || *rq.Required,
		}
		if q.Name != "" {
			if _, taken := s.byName[q.Name]; taken {
				perr.add(rq.ID, "duplicate question name %q", q.Name)
				continue
			}
			s.byName[q.Name] = q.ID
		}
		q.ConfigErr = checkOptions(q)
		s.byID[q.ID] = len(s.questions)
		s.questions = append(s.questions, q)
	}

	// conditions are resolved once every id is known
	for _, rq := range doc.Questions {
		idx, ok := s.byID[rq.ID]
		if !ok {
			continue
		}
		cond, err := parseShowCondition(rq.ShowCondition, s)
		if err != nil {
			perr.add(rq.ID, "%s", err.Error())
			continue
		}
		if cond.TriggerID == rq.ID {
			perr.add(rq.ID, "question cannot be conditional on itself")
			continue
		}
		s.questions[idx].ShowCondition = cond
	}

	if len(perr.Problems) > 0 {
		return nil, perr
	}
	return s, nil
}

func checkOptions(q Question) *ConfigurationError {
	if !q.InputType.IsChoice() {
		return nil
	}
	if q.ValueSets.empty() {
		return &ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("%s question has no options", q.InputType)}
	}
	seen := make(map[string]Tier)
	tiers := []struct {
		tier Tier
		set  []string
	}{
		{TierSafe, q.ValueSets.Safe},
		{TierFlag, q.ValueSets.Flag},
		{TierDisqualify, q.ValueSets.Disqualify},
	}
	for _, vs := range tiers {
		for _, v := range vs.set {
			if prev, ok := seen[v]; ok && prev != vs.tier {
				return &ConfigurationError{QuestionID: q.ID, Reason: fmt.Sprintf("option %q is listed in more than one value set", v)}
			}
			seen[v] = vs.tier
		}
	}
	return nil
}

// Questions returns the questions in schema order.
func (s *Screener) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Screener) Question(id QuestionID) (Question, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Question{}, false
	}
	return s.questions[idx], true
}

func (s *Screener) Has(id QuestionID) bool {
	_, ok := s.byID[id]
	return ok
}

// Resolve maps a question id or name alias onto the question id.
func (s *Screener) Resolve(field string) (QuestionID, bool) {
	if _, ok := s.byID[QuestionID(field)]; ok {
		return QuestionID(field), true
	}
	id, ok := s.byName[field]
	return id, ok
}

// ConfigurationErrors lists the questions marked unusable at parse time.
func (s *Screener) ConfigurationErrors() []*ConfigurationError {
	var out []*ConfigurationError
	for _, q := range s.questions {
		if q.ConfigErr != nil {
			out = append(out, q.ConfigErr)
		}
	}
	return out
}

// FirstOfType returns the first question with the given input type.
func (s *Screener) FirstOfType(t InputType) (Question, bool) {
	for _, q := range s.questions {
		if q.InputType == t {
			return q, true
		}
	}
	return Question{}, false
}

func (s *Screener) fieldKeys() []string {
	keys := make([]string, 0, len(s.byID)+len(s.byName))
	for id := range s.byID {
		keys = append(keys, string(id))
	}
	for name := range s.byName {
		keys = append(keys, name)
	}
	return keys
}

func (s *Screener) questionOffering(option string) (QuestionID, bool) {
	for _, q := range s.questions {
		if q.InputType.IsChoice() && contains(q.Options(), option) {
			return q.ID, true
		}
	}
	return "", false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
