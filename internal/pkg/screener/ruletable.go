package screener

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// Profile is the rule table row of one screener type.
type Profile struct {
	ScreenerType string  `yaml:"-" json:"screener_type"`
	FormType     string  `yaml:"form_type" json:"form_type"`
	Category     string  `yaml:"category" json:"category"`
	MinimumBMI   float64 `yaml:"minimum_bmi" json:"minimum_bmi,omitempty"`
	BMIReason    string  `yaml:"bmi_reason" json:"bmi_reason,omitempty"`
	Disqualify   []Rule  `yaml:"disqualify" json:"disqualify,omitempty"`
	Flag         []Rule  `yaml:"flag" json:"flag,omitempty"`
}

// BMIGated reports whether the profile requires a minimum BMI.
func (p Profile) BMIGated() bool {
	return p.MinimumBMI > 0
}

// RuleTable is the declarative eligibility configuration shared by every
// screener type.
type RuleTable struct {
	MinimumAge              int                `yaml:"minimum_age"`
	AgeReason               string             `yaml:"age_reason"`
	DefaultDisqualifyReason string             `yaml:"default_disqualify_reason"`
	DefaultFlagReason       string             `yaml:"default_flag_reason"`
	DefaultProfile          string             `yaml:"default_profile"`
	Universal               []Rule             `yaml:"universal"`
	Profiles                map[string]Profile `yaml:"profiles"`
}

// LoadRuleTable parses and checks a YAML rule table.
func LoadRuleTable(raw []byte) (*RuleTable, error) {
	var t RuleTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, &ConfigurationError{Reason: "malformed rule table: " + err.Error()}
	}

	normalized := make(map[string]Profile, len(t.Profiles))
	for key, p := range t.Profiles {
		key = strings.ToLower(strings.TrimSpace(key))
		p.ScreenerType = key
		normalized[key] = p
	}
	t.Profiles = normalized
	t.DefaultProfile = strings.ToLower(strings.TrimSpace(t.DefaultProfile))

	if err := t.validate(); err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	return &t, nil
}

// DefaultRuleTable returns the built-in table. It panics if the embedded
// table is broken.
func DefaultRuleTable() *RuleTable {
	t, err := LoadRuleTable(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *RuleTable) validate() error {
	if t.MinimumAge <= 0 {
		return fmt.Errorf("minimum_age must be positive")
	}
	if t.AgeReason == "" {
		return fmt.Errorf("age_reason is required")
	}
	if _, ok := t.Profiles[t.DefaultProfile]; !ok {
		return fmt.Errorf("default_profile %q is not defined", t.DefaultProfile)
	}
	seen := make(map[string]struct{})
	check := func(scope string, rules []Rule) error {
		for _, r := range rules {
			if err := r.validate(); err != nil {
				return fmt.Errorf("%s: %w", scope, err)
			}
			key := scope + "/" + r.ID
			if _, dup := seen[key]; dup {
				return fmt.Errorf("%s: duplicate rule id %s", scope, r.ID)
			}
			seen[key] = struct{}{}
		}
		return nil
	}
	if err := check("universal", t.Universal); err != nil {
		return err
	}
	for key, p := range t.Profiles {
		if p.Category == "" {
			return fmt.Errorf("profile %s has no category", key)
		}
		if p.MinimumBMI < 0 {
			return fmt.Errorf("profile %s has a negative minimum_bmi", key)
		}
		if err := check(key+"/disqualify", p.Disqualify); err != nil {
			return err
		}
		if err := check(key+"/flag", p.Flag); err != nil {
			return err
		}
	}
	return nil
}

// Profile returns the row for screenerType. Unknown types get the default
// profile and ok=false.
func (t *RuleTable) Profile(screenerType string) (Profile, bool) {
	if p, ok := t.Profiles[strings.ToLower(strings.TrimSpace(screenerType))]; ok {
		return p, true
	}
	return t.Profiles[t.DefaultProfile], false
}

// ScreenerTypes lists the configured screener types other than the default.
func (t *RuleTable) ScreenerTypes() []string {
	out := make([]string, 0, len(t.Profiles))
	for key := range t.Profiles {
		if key != t.DefaultProfile {
			out = append(out, key)
		}
	}
	return out
}
