package requests

// StartSession optionally prefills answers, e.g. contact details the host
// page already knows.
type StartSession struct {
	Responses map[string][]string `json:"responses,omitempty"`
}

type AnswerQuestion struct {
	QuestionID string   `json:"question_id" validate:"required,max=128"`
	Values     []string `json:"values" validate:"max=64,dive,max=1024"`
}

// SubmitSession carries what the host page knows about where it runs.
type SubmitSession struct {
	RootDomain string            `json:"root_domain" validate:"omitempty,max=253"`
	Params     map[string]string `json:"params,omitempty" validate:"max=32"`
}
