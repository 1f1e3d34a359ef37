package responses

type Screener struct {
	Type                string     `json:"screener_type"`
	Category            string     `json:"category"`
	FormType            string     `json:"form_type"`
	Questions           []Question `json:"questions"`
	ConfigurationErrors []string   `json:"configuration_errors,omitempty"`
}

type Question struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	Text          string   `json:"text"`
	Section       string   `json:"section,omitempty"`
	InputType     string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	Required      bool     `json:"required"`
	ShowCondition string   `json:"show_condition"`
	Unavailable   bool     `json:"unavailable,omitempty"`
}
