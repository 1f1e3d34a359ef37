package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"screener-service/internal/app/services/shared/screenersource"
	"screener-service/internal/pkg/screener"
)

const (
	StatusValid   = "valid"
	StatusWarning = "warning"
	StatusInvalid = "invalid"
)

// SummaryFileName is written next to the checked schemas on request.
const SummaryFileName = "_summary.json"

type ScreenerReport struct {
	File                string   `json:"file"`
	ScreenerType        string   `json:"screener_type"`
	FormType            string   `json:"form_type,omitempty"`
	Category            string   `json:"category,omitempty"`
	Questions           int      `json:"questions"`
	Status              string   `json:"status"`
	DefaultProfile      bool     `json:"default_profile,omitempty"`
	ConfigurationErrors []string `json:"configuration_errors,omitempty"`
	UnresolvedFields    []string `json:"unresolved_rule_fields,omitempty"`
	Error               string   `json:"error,omitempty"`
}

type Summary struct {
	Directory   string           `json:"directory"`
	GeneratedAt time.Time        `json:"generated_at"`
	Valid       int              `json:"valid"`
	Warnings    int              `json:"warnings"`
	Invalid     int              `json:"invalid"`
	Screeners   []ScreenerReport `json:"screeners"`
}

// CheckDirectory parses every <screenerType>.json in dir and checks it
// against table.
func CheckDirectory(dir string, table *screener.RuleTable, now time.Time) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Directory: dir, GeneratedAt: now.UTC(), Screeners: []ScreenerReport{}}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || name == SummaryFileName {
			continue
		}

		report := checkFile(filepath.Join(dir, name), table)
		switch report.Status {
		case StatusValid:
			summary.Valid++
		case StatusWarning:
			summary.Warnings++
		default:
			summary.Invalid++
		}
		summary.Screeners = append(summary.Screeners, report)
	}
	return summary, nil
}

func checkFile(path string, table *screener.RuleTable) ScreenerReport {
	base := filepath.Base(path)
	report := ScreenerReport{File: base, Status: StatusInvalid}

	screenerType, err := screenersource.NormalizeType(strings.TrimSuffix(base, ".json"))
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.ScreenerType = screenerType

	raw, err := os.ReadFile(path)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	sc, err := screener.ParseSchema(raw)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	if sc.Type != "" {
		report.ScreenerType = sc.Type
	}
	report.Questions = len(sc.Questions())

	profile, known := table.Profile(report.ScreenerType)
	report.DefaultProfile = !known
	report.FormType = profile.FormType
	report.Category = sc.Category
	if report.Category == "" {
		report.Category = profile.Category
	}

	for _, cerr := range sc.ConfigurationErrors() {
		report.ConfigurationErrors = append(report.ConfigurationErrors, cerr.Error())
	}
	report.UnresolvedFields = unresolvedFields(sc, table, profile)

	report.Status = StatusValid
	if len(report.ConfigurationErrors) > 0 || len(report.UnresolvedFields) > 0 {
		report.Status = StatusWarning
	}
	return report
}

// unresolvedFields lists rule fields the screener never asks. Such rules can
// not fire for this screener.
func unresolvedFields(sc *screener.Screener, table *screener.RuleTable, profile screener.Profile) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rules := range [][]screener.Rule{table.Universal, profile.Disqualify, profile.Flag} {
		for _, rule := range rules {
			for _, p := range rule.When {
				if seen[p.Field] {
					continue
				}
				seen[p.Field] = true
				if _, ok := sc.Resolve(p.Field); !ok {
					out = append(out, p.Field)
				}
			}
		}
	}
	sort.Strings(out)
	return out
}
