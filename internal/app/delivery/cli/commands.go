package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"screener-service/internal/app/services/shared/screenersource"
	"screener-service/internal/pkg/screener"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "develop"

var errInvalidScreeners = errors.New("one or more screeners are invalid")

// NewRootCommand builds the screenercheck command tree.
func NewRootCommand(log *logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screenercheck",
		Short:         "Check screener definitions against the rule table",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("rules", "", "rule table YAML file, the embedded table when empty")

	cmd.AddCommand(newValidateCommand(log))
	cmd.AddCommand(newRulesCommand(log))
	return cmd
}

func newValidateCommand(log *logrus.Logger) *cobra.Command {
	var (
		writeSummary bool
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "validate <directory>",
		Short: "Validate every <screenerType>.json in a directory",
		Long: `Parse each screener definition, list misconfigured questions and rule
fields the screener never asks.

Exit code: 0 when every screener parses, 1 otherwise. With --strict
warnings fail the run as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRuleTable(cmd)
			if err != nil {
				return err
			}

			dir := args[0]
			log.WithField("directory", dir).Debug("Checking screener directory")
			summary, err := CheckDirectory(dir, table, time.Now())
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", dir, err)
			}

			PrintSummary(cmd.OutOrStdout(), summary)

			if writeSummary {
				path := filepath.Join(dir, SummaryFileName)
				if err := WriteSummary(path, summary); err != nil {
					return err
				}
				log.WithField("file", path).Info("Summary written")
			}

			if summary.Invalid > 0 || (strict && summary.Warnings > 0) {
				return errInvalidScreeners
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeSummary, "summary", false, "write "+SummaryFileName+" into the directory")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	return cmd
}

func newRulesCommand(log *logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the screener profiles of the rule table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRuleTable(cmd)
			if err != nil {
				return err
			}
			log.Debug("Rule table loaded")
			PrintRuleTable(cmd.OutOrStdout(), table)
			return nil
		},
	}
}

func loadRuleTable(cmd *cobra.Command) (*screener.RuleTable, error) {
	path, err := cmd.Flags().GetString("rules")
	if err != nil {
		return nil, err
	}
	return screenersource.LoadRuleTable(path)
}

// PrintSummary writes one line per screener followed by the totals.
func PrintSummary(w io.Writer, summary *Summary) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	bold.Fprintf(w, "Screeners in %s\n", summary.Directory)
	for _, r := range summary.Screeners {
		switch r.Status {
		case StatusValid:
			green.Fprint(w, "  PASS ")
		case StatusWarning:
			yellow.Fprint(w, "  WARN ")
		default:
			red.Fprint(w, "  FAIL ")
		}
		fmt.Fprintf(w, "%s", r.File)
		if r.Status == StatusInvalid {
			fmt.Fprintf(w, ": %s\n", r.Error)
			continue
		}
		fmt.Fprintf(w, " (%s, %d questions, form %s, category %s)\n", r.ScreenerType, r.Questions, r.FormType, r.Category)
		if r.DefaultProfile {
			fmt.Fprintln(w, "       no rule profile, default profile applies")
		}
		for _, cerr := range r.ConfigurationErrors {
			fmt.Fprintf(w, "       %s\n", cerr)
		}
		for _, field := range r.UnresolvedFields {
			fmt.Fprintf(w, "       rule field %s is not asked\n", field)
		}
	}
	bold.Fprintf(w, "%d valid, %d with warnings, %d invalid\n", summary.Valid, summary.Warnings, summary.Invalid)
}

// WriteSummary stores summary as indented JSON.
func WriteSummary(path string, summary *Summary) error {
	raw, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// PrintRuleTable lists the profiles in name order.
func PrintRuleTable(w io.Writer, table *screener.RuleTable) {
	names := make([]string, 0, len(table.Profiles))
	for name := range table.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	bold := color.New(color.Bold)
	bold.Fprintf(w, "Minimum age %d, %d universal rules\n", table.MinimumAge, len(table.Universal))
	for _, name := range names {
		p := table.Profiles[name]
		marker := ""
		if name == table.DefaultProfile {
			marker = " (default)"
		}
		fmt.Fprintf(w, "  %s%s: form %s, category %s, %d disqualify, %d flag",
			name, marker, p.FormType, p.Category, len(p.Disqualify), len(p.Flag))
		if p.BMIGated() {
			fmt.Fprintf(w, ", minimum BMI %.1f", p.MinimumBMI)
		}
		fmt.Fprintln(w)
	}
}
