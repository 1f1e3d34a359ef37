package screener

import (
	"fmt"
	"strings"
)

// InputType is the closed set of answer widgets a question can use.
type InputType int

const (
	InputText InputType = iota + 1
	InputEmail
	InputPhone
	InputDate
	InputNumber
	InputRadio
	InputCheckbox
	InputHeightFeet
	InputHeightInches
	InputWeightPounds
	InputFile
)

var inputTypeNames = map[InputType]string{
	InputText:         "text",
	InputEmail:        "email",
	InputPhone:        "phone",
	InputDate:         "date",
	InputNumber:       "number",
	InputRadio:        "radio",
	InputCheckbox:     "checkbox",
	InputHeightFeet:   "heightFeet",
	InputHeightInches: "heightInches",
	InputWeightPounds: "weightPounds",
	InputFile:         "file",
}

var inputTypeAliases = map[string]InputType{
	"text":          InputText,
	"textarea":      InputText,
	"email":         InputEmail,
	"phone":         InputPhone,
	"tel":           InputPhone,
	"date":          InputDate,
	"number":        InputNumber,
	"radio":         InputRadio,
	"checkbox":      InputCheckbox,
	"heightfeet":    InputHeightFeet,
	"height_feet":   InputHeightFeet,
	"heightinches":  InputHeightInches,
	"height_inches": InputHeightInches,
	"weightpounds":  InputWeightPounds,
	"weight_pounds": InputWeightPounds,
	"weight":        InputWeightPounds,
	"file":          InputFile,
}

// ParseInputType maps a schema tag onto an InputType. Unknown tags are an error.
func ParseInputType(tag string) (InputType, error) {
	t, ok := inputTypeAliases[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return 0, fmt.Errorf("unknown input type %q", tag)
	}
	return t, nil
}

func (t InputType) String() string {
	if name, ok := inputTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("InputType(%d)", int(t))
}

// IsChoice reports whether answers must come from the question's value sets.
func (t InputType) IsChoice() bool {
	return t == InputRadio || t == InputCheckbox
}

func (t InputType) IsMultiSelect() bool {
	return t == InputCheckbox
}

func (t InputType) IsNumeric() bool {
	switch t {
	case InputNumber, InputHeightFeet, InputHeightInches, InputWeightPounds:
		return true
	}
	return false
}

func (t InputType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
