package screener

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

var validationMessages = map[string]string{
	ValidationRequired: "This field is required.",
	ValidationEmail:    "Please enter a valid email address.",
	ValidationPhone:    "Please enter a valid phone number.",
	ValidationDate:     "Please enter a valid date.",
	ValidationNumber:   "Please enter a valid number.",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("screener_phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(NormalizePhone(fl.Field().String()))
	})
	_ = v.RegisterValidation("screener_date", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("positive_number", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && f > 0
	})
	_ = v.RegisterValidation("inches", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(fl.Field().String()), 64)
		return err == nil && f >= 0 && f < 12
	})
	return v
}

// NormalizePhone strips the separators people commonly type.
func NormalizePhone(phone string) string {
	return phoneSeparators.Replace(strings.TrimSpace(phone))
}

// fieldTag maps an input type onto its validator tag and failure code.
func fieldTag(t InputType) (string, string) {
	switch t {
	case InputEmail:
		return "email", ValidationEmail
	case InputPhone:
		return "screener_phone", ValidationPhone
	case InputDate:
		return "screener_date", ValidationDate
	case InputNumber, InputHeightFeet, InputWeightPounds:
		return "positive_number", ValidationNumber
	case InputHeightInches:
		return "inches", ValidationNumber
	}
	return "", ""
}

// Validate checks the visible questions before submission: required answers
// are present and typed answers are well formed.
func Validate(s *Screener, store *ResponseStore, vis Visibility) ValidationErrors {
	var errs ValidationErrors
	for _, q := range s.questions {
		if !vis.Visible(q.ID) {
			continue
		}
		values := store.lookup(q.ID)
		if len(values) == 0 {
			if vis.Required(q.ID) {
				errs = append(errs, newValidationError(q.ID, ValidationRequired))
			}
			continue
		}
		tag, code := fieldTag(q.InputType)
		if tag == "" {
			continue
		}
		if err := validate.Var(values[0], tag); err != nil {
			errs = append(errs, newValidationError(q.ID, code))
		}
	}
	return errs
}

func newValidationError(id QuestionID, code string) ValidationError {
	return ValidationError{QuestionID: id, Code: code, Message: validationMessages[code]}
}
