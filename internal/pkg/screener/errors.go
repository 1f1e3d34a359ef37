package screener

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownQuestion is the panic value raised when the response store is
// addressed with an id that the screener does not define.
var ErrUnknownQuestion = errors.New("screener: unknown question id")

// ConfigurationError describes a malformed screener definition. QuestionID is
// empty for schema-wide problems.
type ConfigurationError struct {
	QuestionID QuestionID
	Reason     string
}

func (e *ConfigurationError) Error() string {
	if e.QuestionID == "" {
		return "screener configuration: " + e.Reason
	}
	return fmt.Sprintf("screener configuration: question %s: %s", e.QuestionID, e.Reason)
}

// ParseError is returned by ParseSchema when the schema cannot be used.
type ParseError struct {
	Problems []*ConfigurationError
}

func (e *ParseError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *ParseError) add(id QuestionID, format string, args ...interface{}) {
	e.Problems = append(e.Problems, &ConfigurationError{QuestionID: id, Reason: fmt.Sprintf(format, args...)})
}

// Validation failure codes.
const (
	ValidationRequired = "required"
	ValidationEmail    = "email"
	ValidationPhone    = "phone"
	ValidationDate     = "date"
	ValidationNumber   = "positive_number"
)

// ValidationError is a single field that blocks submission.
type ValidationError struct {
	QuestionID QuestionID `json:"question_id"`
	Code       string     `json:"code"`
	Message    string     `json:"message"`
}

// ValidationErrors is the per-field list returned when a submission is rejected.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.QuestionID, e.Message))
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// Field returns the first error recorded for the question, if any.
func (v ValidationErrors) Field(id QuestionID) (ValidationError, bool) {
	for _, e := range v {
		if e.QuestionID == id {
			return e, true
		}
	}
	return ValidationError{}, false
}
